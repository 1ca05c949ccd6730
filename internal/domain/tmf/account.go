package tmf

// Contact contacto declarado en una cuenta de facturación.
type Contact struct {
	ContactName   string          `json:"contactName,omitempty"`
	ContactType   string          `json:"contactType,omitempty"`
	ContactMedium []ContactMedium `json:"contactMedium,omitempty"`
}

// BillingAccount cuenta de facturación TMF666. De aquí salen los datos
// postales del comprador cuando la organización no los trae.
type BillingAccount struct {
	ID            string          `json:"id"`
	Href          string          `json:"href,omitempty"`
	Name          string          `json:"name,omitempty"`
	State         string          `json:"state,omitempty"`
	Contact       []Contact       `json:"contact,omitempty"`
	ContactMedium []ContactMedium `json:"contactMedium,omitempty"`
	RelatedParty  []RelatedParty  `json:"relatedParty,omitempty"`
}

// PostalAddress primer medio postal de la cuenta, buscando primero en los
// contactos y después en los medios directos.
func (b BillingAccount) PostalAddress() *MediumCharacteristic {
	for _, ct := range b.Contact {
		for _, cm := range ct.ContactMedium {
			if cm.MediumType == "PostalAddress" && cm.Characteristic != nil {
				return cm.Characteristic
			}
		}
	}
	for _, cm := range b.ContactMedium {
		if cm.MediumType == "PostalAddress" && cm.Characteristic != nil {
			return cm.Characteristic
		}
	}
	return nil
}
