package models

import (
	"encoding/json"
	"strings"
)

// BlockedCompany is one entry of the user's block list.
type BlockedCompany struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
}

// UnmarshalJSON accepts the older "company" field when "companyName" is absent.
func (c *BlockedCompany) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string  `json:"id"`
		CompanyName *string `json:"companyName"`
		Company     string  `json:"company"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.CompanyName = raw.Company
	if raw.CompanyName != nil {
		c.CompanyName = *raw.CompanyName
	}
	return nil
}

// BlockList is the ordered block list stored under the companyTags key.
type BlockList []BlockedCompany

// Names returns the company names in list order, empty names included.
func (l BlockList) Names() []string {
	names := make([]string, 0, len(l))
	for _, c := range l {
		names = append(names, c.CompanyName)
	}
	return names
}

// Without returns a copy of the list minus entries whose ID equals ref or
// whose name matches ref case-insensitively.
func (l BlockList) Without(ref string) (BlockList, int) {
	ref = strings.TrimSpace(ref)
	out := make(BlockList, 0, len(l))
	removed := 0
	for _, c := range l {
		if c.ID == ref || strings.EqualFold(strings.TrimSpace(c.CompanyName), ref) {
			removed++
			continue
		}
		out = append(out, c)
	}
	return out, removed
}
