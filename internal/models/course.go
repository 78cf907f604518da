package models

// Course describes one regulated safety-training course ("NR") from the static
// catalog. ValidityYears of nil means the training never expires once completed.
type Course struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ValidityYears *int   `json:"validity_years"`
	Workload      string `json:"workload,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Expires reports whether completions of this course age out.
func (c Course) Expires() bool {
	return c.ValidityYears != nil
}
