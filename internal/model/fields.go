package model

import (
	"strings"

	"github.com/samber/mo"
)

// ProfileFields is the partial input of a profile upsert.
//
// Each field is a tagged option: mo.None means "not in the request, leave the
// stored value alone", mo.Some means "replace the stored value". Skills holds the
// raw comma-delimited string as received.
type ProfileFields struct {
	Company        mo.Option[string]
	Website        mo.Option[string]
	Location       mo.Option[string]
	Bio            mo.Option[string]
	Status         mo.Option[string]
	GitHubUsername mo.Option[string]
	Skills         mo.Option[string]
	Social         SocialFields
}

// SocialFields is the partial input for the social links.
type SocialFields struct {
	YouTube   mo.Option[string]
	Twitter   mo.Option[string]
	Facebook  mo.Option[string]
	LinkedIn  mo.Option[string]
	Instagram mo.Option[string]
}

// Build returns the social structure made only of the present sub-fields.
func (s SocialFields) Build() Social {
	return Social{
		YouTube:   s.YouTube.OrEmpty(),
		Twitter:   s.Twitter.OrEmpty(),
		Facebook:  s.Facebook.OrEmpty(),
		LinkedIn:  s.LinkedIn.OrEmpty(),
		Instagram: s.Instagram.OrEmpty(),
	}
}

// Present turns a request string into an option. Blank strings are absent.
func Present(s string) mo.Option[string] {
	if strings.TrimSpace(s) == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}

// SplitSkills splits a comma-delimited skills string, trims every element and
// drops empty ones. Order is preserved.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
