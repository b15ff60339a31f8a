// internal/workers/infrastructure/build-response/models.go
package buildresponse

const (
	DialogClose = "Close"

	StateFulfilled = "Fulfilled"
	StateFailed    = "Failed"

	ContentPlainText = "PlainText"
)

// LexResponse is the close-dialog reply returned to the conversational front-end.
type LexResponse struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	DialogAction      DialogAction      `json:"dialogAction"`
}

type DialogAction struct {
	Type             string  `json:"type"`
	FulfillmentState string  `json:"fulfillmentState"`
	Message          Message `json:"message"`
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// APIGatewayResponse is the proxy integration envelope.
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}
