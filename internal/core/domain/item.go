package domain

// Item is one purchasable catalog entry. Stock is tracked for
// restocking but is not decremented on purchase.
type Item struct {
	Name  string
	Cost  int
	Stock int
}

// Account holds a spendable balance keyed by name. Balance is only
// ever mutated through a funds-checked deduction, so it stays >= 0.
type Account struct {
	Name    string
	Balance int
}
