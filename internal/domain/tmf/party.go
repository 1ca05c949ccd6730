package tmf

// RelatedParty referencia a una parte (cliente, vendedor) asociada a una
// entidad. El rol distingue al comprador del proveedor.
type RelatedParty struct {
	ID           string `json:"id"`
	Href         string `json:"href,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
	ReferredType string `json:"@referredType,omitempty"`
}

// ExternalReference identificador externo de una organización (por ejemplo
// un idm id con el tax id embebido en name).
type ExternalReference struct {
	ExternalReferenceType string `json:"externalReferenceType,omitempty"`
	Name                  string `json:"name,omitempty"`
}

// Characteristic par nombre/valor de una organización (country, address...).
type Characteristic struct {
	Name      string `json:"name"`
	Value     string `json:"value,omitempty"`
	ValueType string `json:"valueType,omitempty"`
}

// MediumCharacteristic detalle de un medio de contacto.
type MediumCharacteristic struct {
	EmailAddress    string `json:"emailAddress,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	PostCode        string `json:"postCode,omitempty"`
	Street1         string `json:"street1,omitempty"`
	Street2         string `json:"street2,omitempty"`
	StateOrProvince string `json:"stateOrProvince,omitempty"`
}

// ContactMedium medio de contacto de una organización o cuenta.
type ContactMedium struct {
	MediumType     string                `json:"mediumType,omitempty"`
	Preferred      bool                  `json:"preferred,omitempty"`
	Characteristic *MediumCharacteristic `json:"characteristic,omitempty"`
}

// Organization organización TMF632. El motor extrae de aquí nombre legal,
// país, dirección y tax id.
type Organization struct {
	ID                  string              `json:"id"`
	Href                string              `json:"href,omitempty"`
	Name                string              `json:"name,omitempty"`
	TradingName         string              `json:"tradingName,omitempty"`
	ContactMedium       []ContactMedium     `json:"contactMedium,omitempty"`
	ExternalReference   []ExternalReference `json:"externalReference,omitempty"`
	PartyCharacteristic []Characteristic    `json:"partyCharacteristic,omitempty"`
}

// CountryCharacteristic devuelve el valor de la característica country, o
// cadena vacía si no existe.
func (o Organization) CountryCharacteristic() string {
	for _, c := range o.PartyCharacteristic {
		if c.Name == "country" {
			return c.Value
		}
	}
	return ""
}

// PreferredEmail primer email de contacto disponible, priorizando el medio
// marcado como preferido.
func (o Organization) PreferredEmail() string {
	var fallback string
	for _, cm := range o.ContactMedium {
		if cm.Characteristic == nil || cm.Characteristic.EmailAddress == "" {
			continue
		}
		if cm.Preferred {
			return cm.Characteristic.EmailAddress
		}
		if fallback == "" {
			fallback = cm.Characteristic.EmailAddress
		}
	}
	return fallback
}
