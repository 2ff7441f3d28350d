// Package crm talks to the external CRM over HTTP. The gateway is idempotent
// on email: find-by-email, then update or create. Its failures are logged and
// swallowed upstream — CRM downtime never breaks a chat turn.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lumen-creative/leadchat/internal/model/chat"
)

// Contact is the CRM's view of a lead, keyed by the CRM-side identifier.
type Contact struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	FirstName  string            `json:"firstName,omitempty"`
	LastName   string            `json:"lastName,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Company    string            `json:"company,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Upserter is what the pipeline depends on; Client is the HTTP
// implementation.
type Upserter interface {
	Upsert(ctx context.Context, lead chat.LeadAttributes, score int) (*Contact, error)
}

// Client is the HTTP CRM gateway.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a gateway for the CRM API at baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Upsert creates or updates the contact for lead. The lead's email is the
// idempotency key and must be present.
func (c *Client) Upsert(ctx context.Context, lead chat.LeadAttributes, score int) (*Contact, error) {
	if lead.Email == "" {
		return nil, fmt.Errorf("lead email is required for CRM upsert")
	}

	existing, err := c.findByEmail(ctx, lead.Email)
	if err != nil {
		return nil, err
	}

	contact := contactFromLead(lead, score)
	if existing != nil {
		contact.ID = existing.ID
		// Merge custom attributes additively; the CRM keeps what we omit.
		return c.update(ctx, contact)
	}
	return c.create(ctx, contact)
}

func contactFromLead(lead chat.LeadAttributes, score int) *Contact {
	contact := &Contact{
		Email:      lead.Email,
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Phone:      lead.Phone,
		Company:    lead.Company,
		Attributes: map[string]string{"leadScore": fmt.Sprintf("%d", score)},
	}
	if lead.Website != "" {
		contact.Attributes["website"] = lead.Website
	}
	if lead.Title != "" {
		contact.Attributes["title"] = lead.Title
	}
	if lead.Interest != "" {
		contact.Attributes["interest"] = lead.Interest
	}
	if lead.Budget != "" {
		contact.Attributes["budget"] = lead.Budget
	}
	if lead.Timeline != "" {
		contact.Attributes["timeline"] = lead.Timeline
	}
	return contact
}

// findByEmail returns nil without error when the CRM knows no such contact.
func (c *Client) findByEmail(ctx context.Context, email string) (*Contact, error) {
	endpoint := fmt.Sprintf("%s/contacts?email=%s", c.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create CRM lookup request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CRM lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("lookup", resp)
	}

	var contacts []Contact
	if err := json.NewDecoder(resp.Body).Decode(&contacts); err != nil {
		return nil, fmt.Errorf("decode CRM lookup response: %w", err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

func (c *Client) create(ctx context.Context, contact *Contact) (*Contact, error) {
	return c.send(ctx, http.MethodPost, c.baseURL+"/contacts", contact, http.StatusCreated, http.StatusOK)
}

func (c *Client) update(ctx context.Context, contact *Contact) (*Contact, error) {
	endpoint := fmt.Sprintf("%s/contacts/%s", c.baseURL, url.PathEscape(contact.ID))
	return c.send(ctx, http.MethodPatch, endpoint, contact, http.StatusOK)
}

func (c *Client) send(ctx context.Context, method, endpoint string, contact *Contact, okStatuses ...int) (*Contact, error) {
	payload, err := json.Marshal(contact)
	if err != nil {
		return nil, fmt.Errorf("marshal CRM contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create CRM request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CRM request failed: %w", err)
	}
	defer resp.Body.Close()

	ok := false
	for _, status := range okStatuses {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		return nil, c.statusError(method, resp)
	}

	var saved Contact
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return nil, fmt.Errorf("decode CRM response: %w", err)
	}
	return &saved, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

// statusError reports a non-2xx CRM response without leaking the body into
// user-visible paths; callers only log it.
func (c *Client) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("CRM %s error: status %d, body: %s", op, resp.StatusCode, string(body))
}
