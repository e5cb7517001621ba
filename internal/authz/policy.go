// Package authz centralizes authorization decisions. Handlers and services
// ask a single capability question per request instead of scattering role
// conditionals across endpoints.
package authz

import (
	"github.com/salvaalejos/ceitm-web/internal/models"
)

// Resource identifies a protected module.
type Resource string

const (
	ResourceUsers        Resource = "users"
	ResourceCareers      Resource = "careers"
	ResourceStudents     Resource = "students"
	ResourceScholarships Resource = "scholarships"
	ResourceApplications Resource = "applications"
	ResourceComplaints   Resource = "complaints"
	ResourceMap          Resource = "map"
	ResourceNews         Resource = "news"
	ResourceDocuments    Resource = "documents"
	ResourceConvenios    Resource = "convenios"
	ResourceShifts       Resource = "shifts"
	ResourceSanctions    Resource = "sanctions"
	ResourceAudit        Resource = "audit"
)

// Action is the operation being attempted on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionResolve Action = "resolve"
	ActionExport  Action = "export"
)

// Decision is the outcome of a capability check. When CareerScoped is true
// the caller may only touch rows belonging to the actor's own career.
type Decision struct {
	Allow        bool
	CareerScoped bool
}

var deny = Decision{}

// areaModules maps a coordinator's area to the modules it manages in full.
var areaModules = map[models.UserArea][]Resource{
	models.AreaBecas:        {ResourceScholarships, ResourceApplications, ResourceStudents},
	models.AreaContraloria:  {ResourceComplaints, ResourceSanctions, ResourceAudit},
	models.AreaComunicacion: {ResourceNews},
	models.AreaMarketing:    {ResourceNews},
	models.AreaVinculacion:  {ResourceConvenios},
	models.AreaAcademico:    {ResourceDocuments},
	models.AreaPrevencion:   {ResourceShifts, ResourceMap},
	models.AreaSistemas:     {ResourceMap, ResourceDocuments},
}

// Can reports whether the actor may perform act on res. The decision depends
// only on the claims, never on the transport, so it is unit-testable in
// isolation.
func Can(claims *models.JWTClaims, res Resource, act Action) Decision {
	if claims == nil {
		return deny
	}
	switch claims.Role {
	case models.RoleAdminSys:
		return Decision{Allow: true}

	case models.RoleEstructura:
		// Estructura runs the council day to day but does not manage
		// accounts or read the audit trail.
		if res == ResourceUsers && act != ActionRead {
			return deny
		}
		if res == ResourceAudit {
			return deny
		}
		return Decision{Allow: true}

	case models.RoleCoordinador:
		for _, managed := range areaModules[claims.Area] {
			if managed == res {
				return Decision{Allow: true}
			}
		}
		if act == ActionRead && res != ResourceUsers && res != ResourceAudit {
			return Decision{Allow: true}
		}
		return deny

	case models.RoleConcejal:
		// Concejales act only within their own career.
		switch res {
		case ResourceApplications, ResourceStudents:
			if act == ActionRead || act == ActionUpdate {
				return Decision{Allow: true, CareerScoped: true}
			}
		case ResourceComplaints:
			if act == ActionRead || act == ActionResolve {
				return Decision{Allow: true, CareerScoped: true}
			}
		case ResourceCareers:
			if act == ActionRead || act == ActionUpdate {
				return Decision{Allow: true, CareerScoped: true}
			}
		case ResourceNews, ResourceDocuments, ResourceConvenios, ResourceMap, ResourceShifts, ResourceScholarships:
			if act == ActionRead {
				return Decision{Allow: true}
			}
		}
		return deny

	case models.RoleVocal:
		if act == ActionRead && res != ResourceUsers && res != ResourceAudit {
			return Decision{Allow: true}
		}
		return deny
	}
	return deny
}

// CareerScope resolves the career filter a decision imposes on the actor.
// An empty string means unrestricted access.
func CareerScope(claims *models.JWTClaims, d Decision) string {
	if !d.CareerScoped || claims == nil {
		return ""
	}
	return claims.Career
}
