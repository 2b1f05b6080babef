package district

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Lincoln", want: "lincoln"},
		{name: " Lincoln ", want: "lincoln"}, // no leading/trailing hyphens
		{name: "\tLincoln\n", want: "lincoln"},
		{name: "  Lincoln Public   Schools! ", want: "lincoln-public-schools"},
		{name: "St. Mary's #12", want: "st-marys-12"},
		{name: "Admin", want: "admin-district"},
		{name: "API", want: "api-district"},
		{name: "logout", want: "logout-district"},
		{name: "¿¡", want: "district"},
		{name: "", want: "district"},
		{name: strings.Repeat("ab", 40), want: strings.Repeat("ab", 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSlug(tt.name)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSlugLen)
		})
	}
}

func TestIsReservedSlug(t *testing.T) {
	for _, s := range []string{"api", "admin", "dashboard", "public", "auth", "login", "logout"} {
		assert.Truef(t, IsReservedSlug(s), "IsReservedSlug(%q)", s)
	}
	assert.False(t, IsReservedSlug("lincoln"))
	assert.False(t, IsReservedSlug("admin-district"))
}
