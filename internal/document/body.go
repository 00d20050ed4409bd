package document

import (
	"fmt"
	"strings"

	"brgygo/pkg/types"
)

func bodyParagraphs(req *types.Request, office types.Office) []string {
	name := strings.ToUpper(req.FullName())
	residence := residenceOf(req, office)
	purpose := valueOr(req.Purpose, "whatever legal purpose it may serve")

	switch req.Type {
	case types.DocumentTypeIndigency:
		return []string{
			fmt.Sprintf("This is to certify that %s, %d years old, a resident of %s, belongs to an indigent family of this barangay and has no sufficient means of income.", name, req.Age, residence),
			fmt.Sprintf("This certification is issued upon the request of the above-named person for %s.", purpose),
		}
	case types.DocumentTypeResidency:
		return []string{
			fmt.Sprintf("This is to certify that %s, %d years old, is a bona fide resident of %s and has been residing in this barangay for %s.", name, req.Age, residence, valueOr(req.ResidencyDuration, "an undetermined period")),
			"This certification is issued upon the request of the above-named person for whatever legal purpose it may serve.",
		}
	case types.DocumentTypeGoodMoral:
		paragraphs := []string{
			fmt.Sprintf("This is to certify that %s, %d years old, a resident of %s, is personally known to this office to be a person of good moral character and a law-abiding citizen of the community.", name, req.Age, residence),
			"Records of this office show that the above-named person has not been involved in any unlawful activity nor charged of any offense in this barangay.",
		}
		if req.CharacterReference != nil && strings.TrimSpace(*req.CharacterReference) != "" {
			paragraphs = append(paragraphs, fmt.Sprintf("Character reference: %s.", strings.TrimSpace(*req.CharacterReference)))
		}
		return append(paragraphs, fmt.Sprintf("This certification is issued upon the request of the above-named person for %s.", purpose))
	case types.DocumentTypeBusinessClearance:
		return []string{
			fmt.Sprintf("This is to certify that %s, owned and operated by %s, with business address at %s, has complied with the requirements of this barangay for the operation of a business.", strings.ToUpper(valueOr(req.BusinessName, "the business")), name, residence),
			"This clearance is granted for the purpose of securing a business permit and shall be valid until the end of the current calendar year unless sooner revoked for cause.",
		}
	}

	return []string{
		fmt.Sprintf("This is to certify that %s, %d years old, a resident of %s, is known to be a law-abiding citizen and has no derogatory record on file in this office.", name, req.Age, residence),
		fmt.Sprintf("This clearance is issued upon the request of the above-named person for %s.", purpose),
	}
}

func residenceOf(req *types.Request, office types.Office) string {
	barangay := valueOr(req.Barangay, office.Barangay)
	parts := []string{strings.TrimSpace(req.Address)}
	if barangay != "" && !strings.Contains(strings.ToLower(req.Address), strings.ToLower(barangay)) {
		parts = append(parts, "Barangay "+barangay)
	}
	parts = append(parts, office.Municipality, office.Province)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func valueOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return strings.TrimSpace(*v)
}
