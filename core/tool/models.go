package tool

// Tool is a paid feature a student spends credits on.
type Tool struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreditCost  int    `json:"credit_cost"`
	IsActive    bool   `json:"is_active"`
}
