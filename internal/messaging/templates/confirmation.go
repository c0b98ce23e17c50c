package templates

// ConfirmationData feeds the payment confirmation messages.
type ConfirmationData struct {
	Name    string
	Plan    string
	Amount  float64
	DateISO string
	Time    string
}

const customerConfirmation = `Olá {{.Name}}, seu pagamento de {{brl .Amount}} foi confirmado. Seu agendamento: {{orDash .DateISO}} {{.Time}}.`

const ownerSummary = `Pagamento confirmado: {{.Name}} — {{orDash .Plan}} — {{brl .Amount}}`

var defaultRenderer = NewRenderer()

// CustomerConfirmation is sent to the customer once the payment is approved.
func CustomerConfirmation(data ConfirmationData) (string, error) {
	return defaultRenderer.Render("customer_confirmation", customerConfirmation, data)
}

// OwnerSummary is sent to the owner when the customer cannot be reached.
func OwnerSummary(data ConfirmationData) (string, error) {
	return defaultRenderer.Render("owner_summary", ownerSummary, data)
}
