package tmf

// ProductOfferingRef referencia del producto a su oferta de catálogo.
type ProductOfferingRef struct {
	ID   string `json:"id"`
	Href string `json:"href,omitempty"`
	Name string `json:"name,omitempty"`
}

// Product producto TMF637 instanciado para el cliente. El motor usa el
// nombre para la descripción de línea y la oferta para resolverla en el
// catálogo.
type Product struct {
	ID              string              `json:"id"`
	Href            string              `json:"href,omitempty"`
	Name            string              `json:"name,omitempty"`
	Description     string              `json:"description,omitempty"`
	Status          string              `json:"status,omitempty"`
	ProductOffering *ProductOfferingRef `json:"productOffering,omitempty"`
	RelatedParty    []RelatedParty      `json:"relatedParty,omitempty"`
}

// ProductOffering oferta de catálogo TMF620.
type ProductOffering struct {
	ID          string `json:"id"`
	Href        string `json:"href,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}
