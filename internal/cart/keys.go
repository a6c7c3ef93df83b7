package cart

// Storage keys. Each address field is persisted on its own because the store only
// holds strings.
const (
	KeyCart      = "cart"
	KeyFirstName = "firstName"
	KeyLastName  = "lastName"
	KeyAddress   = "address"
	KeyAddress2  = "address2"
	KeyZip       = "zip"
	KeyCity      = "city"
	KeyCountry   = "country"
	KeyPhone     = "phone"

	// legacyKeyFirstName is the misspelled key older storefront builds wrote. It is only
	// read, and only when KeyFirstName is absent.
	legacyKeyFirstName = "firtsName"
)

type addressField struct {
	key   string
	get   func(*ShippingAddress) string
	apply func(*ShippingAddress, string)
}

var addressFields = []addressField{
	{KeyFirstName, func(a *ShippingAddress) string { return a.FirstName }, func(a *ShippingAddress, v string) { a.FirstName = v }},
	{KeyLastName, func(a *ShippingAddress) string { return a.LastName }, func(a *ShippingAddress, v string) { a.LastName = v }},
	{KeyAddress, func(a *ShippingAddress) string { return a.Address }, func(a *ShippingAddress, v string) { a.Address = v }},
	{KeyAddress2, func(a *ShippingAddress) string { return a.Address2 }, func(a *ShippingAddress, v string) { a.Address2 = v }},
	{KeyZip, func(a *ShippingAddress) string { return a.Zip }, func(a *ShippingAddress, v string) { a.Zip = v }},
	{KeyCity, func(a *ShippingAddress) string { return a.City }, func(a *ShippingAddress, v string) { a.City = v }},
	{KeyCountry, func(a *ShippingAddress) string { return a.Country }, func(a *ShippingAddress, v string) { a.Country = v }},
	{KeyPhone, func(a *ShippingAddress) string { return a.Phone }, func(a *ShippingAddress, v string) { a.Phone = v }},
}
