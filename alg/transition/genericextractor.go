package transition

import (
	"errors"
	"fmt"
	"io"
	"strings"

	. "github.com/danielgalbraith/DepTrain/alg/featurevector"
	"github.com/danielgalbraith/DepTrain/util"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/rs/zerolog"
	"github.com/twmb/murmur3"
)

const (
	FEATURE_SEPARATOR              = "+" // separates multiple attribute sources
	ATTRIBUTE_SEPARATOR            = "|" // separates attributes in a source
	TEMPLATE_PREFIX                = ":" // output separator
	GENERIC_SEPARATOR              = "|" // output separator
	FEATURE_REQUIREMENTS_SEPARATOR = "," // separates template from requirements
	REQUIREMENTS_SEPARATOR         = ";" // separates multiple requirements
	BIAS_FEATURE                   = "bias"
	APPROX_ELEMENTS                = 20
)

type FeatureExtractor interface {
	Features(conf Configuration) []Feature
	EstimatedNumberOfFeatures() int
}

type FeatureTemplateElement struct {
	Address    []byte
	Attributes [][]byte

	ConfStr string
}

type FeatureTemplate struct {
	Elements     []FeatureTemplateElement
	Requirements [][]byte
	ID           int
	Str          string
}

func (f FeatureTemplate) String() string {
	return f.Str
}

type GenericExtractor struct {
	EFeatures *util.EnumSet
	Templates []FeatureTemplate

	Log bool
	log zerolog.Logger
}

var _ FeatureExtractor = &GenericExtractor{}

func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{
		EFeatures: util.NewEnumSet(APPROX_ELEMENTS),
		Templates: make([]FeatureTemplate, 0, APPROX_ELEMENTS),
		log:       logging.NewLogger("features"),
	}
}

// NewExtractorFromSetup builds an extractor with every template of setup.
func NewExtractorFromSetup(setup *FeatureSetup) (*GenericExtractor, error) {
	x := NewGenericExtractor()
	if err := x.LoadFeatureSetup(setup); err != nil {
		return nil, err
	}
	return x, nil
}

// Features instantiates every template against conf and returns the hashed
// values, bias first. Templates whose addresses or attributes do not exist
// in conf are skipped.
func (x *GenericExtractor) Features(conf Configuration) []Feature {
	retval := make([]Feature, 0, len(x.Templates)+1)
	retval = append(retval, hashFeature(BIAS_FEATURE, nil))
	values := make([]string, 0, 4)
	for i := range x.Templates {
		template := &x.Templates[i]
		values = values[0:0]
		var ok bool
		values, ok = x.GetFeature(conf, template, values)
		if !ok {
			continue
		}
		if x.Log {
			x.log.Debug().Str("template", template.Str).Strs("values", values).Msg("feature")
		}
		retval = append(retval, hashFeature(template.Str, values))
	}
	return retval
}

// FeatureStrings renders the instantiated templates of conf as
// "template:value" strings.
func (x *GenericExtractor) FeatureStrings(conf Configuration) []string {
	retval := make([]string, 0, len(x.Templates))
	for i := range x.Templates {
		values, ok := x.GetFeature(conf, &x.Templates[i], nil)
		if !ok {
			continue
		}
		retval = append(retval, x.Templates[i].Str+TEMPLATE_PREFIX+strings.Join(values, GENERIC_SEPARATOR))
	}
	return retval
}

func (x *GenericExtractor) EstimatedNumberOfFeatures() int {
	return len(x.Templates) + 1
}

func (x *GenericExtractor) GetFeature(conf Configuration, template *FeatureTemplate, featureValues []string) ([]string, bool) {
	for _, req := range template.Requirements {
		if _, exists := conf.Address(req); !exists {
			return nil, false
		}
	}
	for i := range template.Elements {
		var ok bool
		featureValues, ok = x.GetFeatureElement(conf, &template.Elements[i], featureValues)
		if !ok {
			return nil, false
		}
	}
	return featureValues, true
}

func (x *GenericExtractor) GetFeatureElement(conf Configuration, templateElement *FeatureTemplateElement, attrValues []string) ([]string, bool) {
	address, exists := conf.Address(templateElement.Address)
	if !exists {
		return nil, false
	}
	for _, attribute := range templateElement.Attributes {
		attrValue, exists := conf.Attribute(address, attribute)
		if !exists {
			return nil, false
		}
		attrValues = append(attrValues, attrValue)
	}
	return attrValues, true
}

func (x *GenericExtractor) ParseFeatureElement(featElementStr string) (*FeatureTemplateElement, error) {
	elementParts := strings.Split(featElementStr, ATTRIBUTE_SEPARATOR)
	if len(elementParts) < 2 {
		return nil, errors.New("not enough parts for element " + featElementStr)
	}
	if !validAddress(elementParts[0]) {
		return nil, fmt.Errorf("bad address %q in element %s", elementParts[0], featElementStr)
	}
	element := &FeatureTemplateElement{
		ConfStr:    featElementStr,
		Address:    []byte(elementParts[0]),
		Attributes: make([][]byte, 0, len(elementParts)-1),
	}
	for _, elementStr := range elementParts[1:] {
		if len(elementStr) == 0 {
			return nil, errors.New("empty attribute in element " + featElementStr)
		}
		element.Attributes = append(element.Attributes, []byte(elementStr))
	}
	return element, nil
}

func (x *GenericExtractor) ParseFeatureTemplate(featTemplateStr string) (*FeatureTemplate, error) {
	// remove any spaces
	featTemplateStr = strings.Replace(featTemplateStr, " ", "", -1)
	// a template may carry requirements: S0h|n,S0h
	pair := strings.SplitN(featTemplateStr, FEATURE_REQUIREMENTS_SEPARATOR, 2)
	template := &FeatureTemplate{Str: pair[0]}
	for _, featElementStr := range strings.Split(pair[0], FEATURE_SEPARATOR) {
		parsedElement, err := x.ParseFeatureElement(featElementStr)
		if err != nil {
			return nil, err
		}
		template.Elements = append(template.Elements, *parsedElement)
	}
	if len(pair) > 1 && pair[1] != "n/a" {
		for _, req := range strings.Split(pair[1], REQUIREMENTS_SEPARATOR) {
			if !validAddress(req) {
				return nil, fmt.Errorf("bad requirement %q in template %s", req, featTemplateStr)
			}
			template.Requirements = append(template.Requirements, []byte(req))
		}
	}
	return template, nil
}

func (x *GenericExtractor) LoadFeature(featTemplateStr string) error {
	template, err := x.ParseFeatureTemplate(featTemplateStr)
	if err != nil {
		return err
	}
	var isNew bool
	template.ID, isNew = x.EFeatures.Add(template.Str)
	if !isNew {
		return nil
	}
	x.Templates = append(x.Templates, *template)
	return nil
}

// LoadFeatures reads one template per line; lines beginning with # are
// omitted.
func (x *GenericExtractor) LoadFeatures(reader io.Reader) error {
	lines, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(lines), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if err := x.LoadFeature(line); err != nil {
			return err
		}
	}
	return nil
}

func (x *GenericExtractor) LoadFeatureSetup(setup *FeatureSetup) error {
	for _, group := range setup.FeatureGroups {
		x.log.Debug().Str("group", group.Group).Int("features", len(group.Features)).Msg("loading feature group")
		for _, featureConfig := range group.Features {
			if err := x.LoadFeature(featureConfig); err != nil {
				return fmt.Errorf("feature group %s: %w", group.Group, err)
			}
		}
	}
	if len(x.Templates) == 0 {
		return errors.New("no feature templates loaded")
	}
	return nil
}

// validAddress accepts S<d> or N<d> followed by optional h, l or r modifiers.
func validAddress(address string) bool {
	if len(address) < 2 || (address[0] != 'S' && address[0] != 'N') {
		return false
	}
	if address[1] < '0' || address[1] > '9' {
		return false
	}
	for _, c := range address[2:] {
		if c != 'h' && c != 'l' && c != 'r' {
			return false
		}
	}
	return true
}

func hashFeature(template string, values []string) Feature {
	h := murmur3.New64()
	h.Write([]byte(template))
	for _, v := range values {
		h.Write([]byte{0})
		h.Write([]byte(v))
	}
	return Feature(h.Sum64())
}
