package chat

// LeadAttributes holds the contact and qualification fields accumulated for a
// visitor. Every field is optional; extraction only ever fills gaps.
type LeadAttributes struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Website   string `json:"website,omitempty"`
	Title     string `json:"title,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Budget    string `json:"budget,omitempty"`
	Timeline  string `json:"timeline,omitempty"`
}

// Merge folds extracted into l with fill-if-absent semantics: a populated
// field is never overwritten by a later extraction. The explicit capture form
// goes through Overwrite instead.
func (l LeadAttributes) Merge(extracted LeadAttributes) LeadAttributes {
	fill := func(current, incoming string) string {
		if current != "" {
			return current
		}
		return incoming
	}

	return LeadAttributes{
		FirstName: fill(l.FirstName, extracted.FirstName),
		LastName:  fill(l.LastName, extracted.LastName),
		Email:     fill(l.Email, extracted.Email),
		Phone:     fill(l.Phone, extracted.Phone),
		Company:   fill(l.Company, extracted.Company),
		Website:   fill(l.Website, extracted.Website),
		Title:     fill(l.Title, extracted.Title),
		Interest:  fill(l.Interest, extracted.Interest),
		Budget:    fill(l.Budget, extracted.Budget),
		Timeline:  fill(l.Timeline, extracted.Timeline),
	}
}

// Overwrite applies caller-supplied values over l, field by field. Empty
// incoming fields leave the current value untouched, so a capture form can
// submit only what the visitor filled in.
func (l LeadAttributes) Overwrite(update LeadAttributes) LeadAttributes {
	apply := func(current, incoming string) string {
		if incoming != "" {
			return incoming
		}
		return current
	}

	return LeadAttributes{
		FirstName: apply(l.FirstName, update.FirstName),
		LastName:  apply(l.LastName, update.LastName),
		Email:     apply(l.Email, update.Email),
		Phone:     apply(l.Phone, update.Phone),
		Company:   apply(l.Company, update.Company),
		Website:   apply(l.Website, update.Website),
		Title:     apply(l.Title, update.Title),
		Interest:  apply(l.Interest, update.Interest),
		Budget:    apply(l.Budget, update.Budget),
		Timeline:  apply(l.Timeline, update.Timeline),
	}
}

// Fingerprint returns a stable rendition of the attribute set, used to decide
// whether a CRM push would carry anything new.
func (l LeadAttributes) Fingerprint() string {
	return l.FirstName + "|" + l.LastName + "|" + l.Email + "|" + l.Phone + "|" +
		l.Company + "|" + l.Website + "|" + l.Title + "|" + l.Interest + "|" +
		l.Budget + "|" + l.Timeline
}
