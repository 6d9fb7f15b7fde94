package breadcrumb

type Breadcrumb struct {
	Name string
	URL  string
}

// Home prefixes crumbs with the feed link.
func Home(crumbs ...Breadcrumb) []Breadcrumb {
	return append([]Breadcrumb{{Name: "Home", URL: "/"}}, crumbs...)
}
