package user

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/darasa-tz/darasa/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	eqFieldTag  = "eqfield"
	eqFieldText = "passwords do not match"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(allRolesTag, allRolesText)
	core.RegisterCustomTranslation(eqFieldTag, eqFieldText, true)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	if roles, ok := fl.Field().Interface().([]string); ok {
		sort.Strings(AllRoles)
		for _, role := range roles {
			if idx := sort.SearchStrings(AllRoles, role); idx < len(AllRoles) {
				if match := AllRoles[idx]; role != match {
					return false
				}
			} else {
				return false
			}
		}
		return true
	}
	return false
}
