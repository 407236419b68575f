package domain

// Address is a postal address. Components are not format-checked.
type Address struct {
	country    string
	city       string
	street     string
	postalCode string
}

func NewAddress(country, city, street, postalCode string) Address {
	return Address{country: country, city: city, street: street, postalCode: postalCode}
}

func (a Address) Country() string    { return a.country }
func (a Address) City() string       { return a.city }
func (a Address) Street() string     { return a.street }
func (a Address) PostalCode() string { return a.postalCode }

func (a Address) Equal(other Address) bool {
	return a == other
}

// AddressState is the plain data form of an Address.
type AddressState struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
}

func (a Address) State() AddressState {
	return AddressState{Country: a.country, City: a.city, Street: a.street, PostalCode: a.postalCode}
}

func RestoreAddress(state AddressState) Address {
	return NewAddress(state.Country, state.City, state.Street, state.PostalCode)
}
