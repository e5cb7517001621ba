package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

func claims(role models.UserRole, area models.UserArea, career string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: role, Area: area, Career: career}
}

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		claims *models.JWTClaims
		res    Resource
		act    Action
		allow  bool
		scoped bool
	}{
		{
			name:   "nil claims denied",
			claims: nil,
			res:    ResourceNews,
			act:    ActionRead,
		},
		{
			name:   "admin_sys manages users",
			claims: claims(models.RoleAdminSys, models.AreaSistemas, ""),
			res:    ResourceUsers,
			act:    ActionDelete,
			allow:  true,
		},
		{
			name:   "admin_sys reads audit",
			claims: claims(models.RoleAdminSys, models.AreaSistemas, ""),
			res:    ResourceAudit,
			act:    ActionRead,
			allow:  true,
		},
		{
			name:   "estructura cannot manage users",
			claims: claims(models.RoleEstructura, models.AreaPresidencia, ""),
			res:    ResourceUsers,
			act:    ActionCreate,
		},
		{
			name:   "estructura cannot read audit",
			claims: claims(models.RoleEstructura, models.AreaPresidencia, ""),
			res:    ResourceAudit,
			act:    ActionRead,
		},
		{
			name:   "estructura transitions applications",
			claims: claims(models.RoleEstructura, models.AreaPresidencia, ""),
			res:    ResourceApplications,
			act:    ActionUpdate,
			allow:  true,
		},
		{
			name:   "becas coordinator manages applications",
			claims: claims(models.RoleCoordinador, models.AreaBecas, ""),
			res:    ResourceApplications,
			act:    ActionUpdate,
			allow:  true,
		},
		{
			name:   "becas coordinator cannot resolve complaints",
			claims: claims(models.RoleCoordinador, models.AreaBecas, ""),
			res:    ResourceComplaints,
			act:    ActionResolve,
		},
		{
			name:   "contraloria coordinator resolves complaints",
			claims: claims(models.RoleCoordinador, models.AreaContraloria, ""),
			res:    ResourceComplaints,
			act:    ActionResolve,
			allow:  true,
		},
		{
			name:   "coordinator reads outside own area",
			claims: claims(models.RoleCoordinador, models.AreaBecas, ""),
			res:    ResourceNews,
			act:    ActionRead,
			allow:  true,
		},
		{
			name:   "concejal updates applications scoped to career",
			claims: claims(models.RoleConcejal, models.AreaNinguna, "ISC"),
			res:    ResourceApplications,
			act:    ActionUpdate,
			allow:  true,
			scoped: true,
		},
		{
			name:   "concejal cannot delete applications",
			claims: claims(models.RoleConcejal, models.AreaNinguna, "ISC"),
			res:    ResourceApplications,
			act:    ActionDelete,
		},
		{
			name:   "concejal edits own career scoped",
			claims: claims(models.RoleConcejal, models.AreaNinguna, "ISC"),
			res:    ResourceCareers,
			act:    ActionUpdate,
			allow:  true,
			scoped: true,
		},
		{
			name:   "concejal reads scholarships unscoped",
			claims: claims(models.RoleConcejal, models.AreaNinguna, "ISC"),
			res:    ResourceScholarships,
			act:    ActionRead,
			allow:  true,
		},
		{
			name:   "vocal reads news",
			claims: claims(models.RoleVocal, models.AreaNinguna, ""),
			res:    ResourceNews,
			act:    ActionRead,
			allow:  true,
		},
		{
			name:   "vocal cannot write anything",
			claims: claims(models.RoleVocal, models.AreaNinguna, ""),
			res:    ResourceNews,
			act:    ActionCreate,
		},
		{
			name:   "vocal cannot read users",
			claims: claims(models.RoleVocal, models.AreaNinguna, ""),
			res:    ResourceUsers,
			act:    ActionRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Can(tt.claims, tt.res, tt.act)
			assert.Equal(t, tt.allow, got.Allow)
			assert.Equal(t, tt.scoped, got.CareerScoped)
		})
	}
}

func TestCareerScope(t *testing.T) {
	concejal := claims(models.RoleConcejal, models.AreaNinguna, "IGE")
	scoped := Can(concejal, ResourceApplications, ActionRead)
	assert.Equal(t, "IGE", CareerScope(concejal, scoped))

	admin := claims(models.RoleAdminSys, models.AreaSistemas, "")
	open := Can(admin, ResourceApplications, ActionRead)
	assert.Equal(t, "", CareerScope(admin, open))
}
