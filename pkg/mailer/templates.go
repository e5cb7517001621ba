package mailer

// Template names selected by application status or event.
const (
	TemplateApplicationReceived    = "application_received"
	TemplateApplicationApproved    = "application_approved"
	TemplateApplicationRejected    = "application_rejected"
	TemplateApplicationMissingDocs = "application_missing_docs"
	TemplateApplicationReleased    = "application_released"
	TemplateApplicationUpdate      = "application_update"
	TemplateComplaintReceived      = "complaint_received"
	TemplateComplaintResolved      = "complaint_resolved"
)

const mailTemplates = `
{{define "application_received"}}
<p>Hola {{.full_name}},</p>
<p>Recibimos tu solicitud para la beca <strong>{{.scholarship}}</strong>.
Tu número de control registrado es <strong>{{.control_number}}</strong>.</p>
<p>Podrás consultar el estado de tu solicitud en el portal del CEITM.</p>
{{end}}

{{define "application_approved"}}
<p>Hola {{.full_name}},</p>
<p>¡Felicidades! Tu solicitud para la beca <strong>{{.scholarship}}</strong> fue <strong>aprobada</strong>.</p>
<p>Mantente al pendiente del proceso de liberación.</p>
{{end}}

{{define "application_rejected"}}
<p>Hola {{.full_name}},</p>
<p>Tu solicitud para la beca <strong>{{.scholarship}}</strong> fue <strong>rechazada</strong>.</p>
{{if .comments}}<p>Observaciones del comité: {{.comments}}</p>{{end}}
<p>Puedes volver a enviar tu solicitud corregida mientras la convocatoria siga abierta.</p>
{{end}}

{{define "application_missing_docs"}}
<p>Hola {{.full_name}},</p>
<p>Tu solicitud para la beca <strong>{{.scholarship}}</strong> tiene <strong>documentación faltante</strong>.</p>
{{if .comments}}<p>Detalle: {{.comments}}</p>{{end}}
<p>Vuelve a enviar tu solicitud con los documentos completos.</p>
{{end}}

{{define "application_released"}}
<p>Hola {{.full_name}},</p>
<p>Tu beca <strong>{{.scholarship}}</strong> fue <strong>liberada</strong>.</p>
<p>Folio de liberación: <strong>{{.folio}}</strong>. Consérvalo para cualquier aclaración.</p>
{{end}}

{{define "application_update"}}
<p>Hola {{.full_name}},</p>
<p>El estado de tu solicitud para la beca <strong>{{.scholarship}}</strong> cambió a <strong>{{.status}}</strong>.</p>
{{if .comments}}<p>Observaciones: {{.comments}}</p>{{end}}
{{end}}

{{define "complaint_received"}}
<p>Hola {{.full_name}},</p>
<p>Recibimos tu reporte en el buzón del CEITM.</p>
<p>Código de seguimiento: <strong>{{.tracking_code}}</strong>.</p>
{{end}}

{{define "complaint_resolved"}}
<p>Hola {{.full_name}},</p>
<p>Tu reporte <strong>{{.tracking_code}}</strong> fue atendido.</p>
{{if .response}}<p>Respuesta del consejo: {{.response}}</p>{{end}}
{{end}}
`
