// Package countries resuelve y adivina países: normaliza nombres o códigos a
// ISO 3166-1 alfa-2 y, cuando una organización no declara país, lo infiere a
// partir de pistas (VAT, teléfono, dominio, forma jurídica, nombre de país).
package countries

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

//go:embed hints.json
var defaultHints []byte

// GuessResult resultado de una pasada del adivinador para un país: la
// puntuación sube una unidad por cada pista que casa.
type GuessResult struct {
	CountryCode     string
	Score           int
	MatchedPatterns []string
}

type pattern struct {
	countryCode   string
	countryNames  []*regexp.Regexp
	vat           []*regexp.Regexp
	phone         *regexp.Regexp
	domain        *regexp.Regexp
	legalEntities []*regexp.Regexp
}

type patternJSON struct {
	CountryCode    string   `json:"country_code"`
	CountryNames   []string `json:"country_names"`
	VatRes         []string `json:"vat_res"`
	PhoneRe        string   `json:"phone_re"`
	DomainRe       string   `json:"domain_re"`
	LegalEntityRes []string `json:"legal_entity_res"`
}

// Guesser adivinador de país basado en patrones por país.
type Guesser struct {
	patterns []pattern
}

// NewGuesser adivinador con las pistas embebidas en el binario.
func NewGuesser() (*Guesser, error) {
	return NewGuesserFromJSON(defaultHints)
}

// NewGuesserFromJSON adivinador a partir de un JSON de pistas externo.
func NewGuesserFromJSON(raw []byte) (*Guesser, error) {
	var defs []patternJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("countries: pistas inválidas: %w", err)
	}
	g := &Guesser{}
	for _, d := range defs {
		p, err := compilePattern(d)
		if err != nil {
			return nil, err
		}
		g.patterns = append(g.patterns, p)
	}
	return g, nil
}

func compilePattern(d patternJSON) (pattern, error) {
	p := pattern{countryCode: d.CountryCode}
	ci := func(expr string) (*regexp.Regexp, error) {
		return regexp.Compile("(?i)^(?:" + expr + ")$")
	}
	for _, expr := range d.CountryNames {
		re, err := ci(expr)
		if err != nil {
			return p, fmt.Errorf("countries: %s: country_names: %w", d.CountryCode, err)
		}
		p.countryNames = append(p.countryNames, re)
	}
	for _, expr := range d.VatRes {
		re, err := ci(expr)
		if err != nil {
			return p, fmt.Errorf("countries: %s: vat_res: %w", d.CountryCode, err)
		}
		p.vat = append(p.vat, re)
	}
	var err error
	if p.phone, err = ci(d.PhoneRe); err != nil {
		return p, fmt.Errorf("countries: %s: phone_re: %w", d.CountryCode, err)
	}
	if p.domain, err = ci(d.DomainRe); err != nil {
		return p, fmt.Errorf("countries: %s: domain_re: %w", d.CountryCode, err)
	}
	for _, expr := range d.LegalEntityRes {
		re, err := ci(expr)
		if err != nil {
			return p, fmt.Errorf("countries: %s: legal_entity_res: %w", d.CountryCode, err)
		}
		p.legalEntities = append(p.legalEntities, re)
	}
	return p, nil
}

// GuessCountry evalúa todas las pistas contra la organización y devuelve los
// países con puntuación positiva, de mayor a menor.
func (g *Guesser) GuessCountry(org tmf.Organization) []GuessResult {
	var out []GuessResult
	for _, p := range g.patterns {
		if r := p.match(org); r.Score > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (p pattern) match(org tmf.Organization) GuessResult {
	out := GuessResult{CountryCode: p.countryCode}

	var domainTexts, phoneTexts, countryTexts, vatTexts, leTexts []string

	if org.TradingName != "" {
		leTexts = append(leTexts, org.TradingName)
	}
	for _, cm := range org.ContactMedium {
		c := cm.Characteristic
		if c == nil {
			continue
		}
		if c.EmailAddress != "" {
			domainTexts = append(domainTexts, c.EmailAddress)
		}
		if c.PhoneNumber != "" {
			phoneTexts = append(phoneTexts, c.PhoneNumber)
		}
		if c.Country != "" {
			countryTexts = append(countryTexts, c.Country)
		}
	}
	for _, c := range org.PartyCharacteristic {
		if c.Name == "website" && c.Value != "" {
			domainTexts = append(domainTexts, c.Value)
		}
	}
	for _, er := range org.ExternalReference {
		if er.ExternalReferenceType == "idm_id" && er.Name != "" {
			vatTexts = append(vatTexts, er.Name)
		}
	}

	hit := func(label string) {
		out.MatchedPatterns = append(out.MatchedPatterns, label)
		out.Score++
	}
	matchAll := func(res []*regexp.Regexp, texts []string, label string) {
		for _, re := range res {
			for _, t := range texts {
				if re.MatchString(strings.TrimSpace(t)) {
					hit(label)
				}
			}
		}
	}

	matchAll(p.legalEntities, leTexts, "legal entity")
	matchAll(p.vat, vatTexts, "vat")
	matchAll(p.countryNames, countryTexts, "country")
	matchAll([]*regexp.Regexp{p.phone}, phoneTexts, "phone")
	matchAll([]*regexp.Regexp{p.domain}, domainTexts, "domain")

	return out
}
