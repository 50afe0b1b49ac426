package service

// Kind classifies an operation failure so the HTTP layer can pick a status
// code without string matching.
type Kind int

const (
	KindValidation Kind = iota + 1 // 400: missing/invalid field, refund guard, bad signature
	KindForbidden                  // 403: record not owned by caller
	KindNotFound                   // 404: order/payment absent
	KindGateway                    // 502-ish: provider rejected or unreachable; compensations already applied
	KindInternal                   // 500: storage failure
)

// Error is the failure value for every orchestrator operation. Gateway and
// storage errors are wrapped here at the operation boundary; nothing
// propagates to the transport layer as a panic.
type Error struct {
	Kind    Kind
	Message string
	// Code carries the provider's detail code on gateway failures. Logged,
	// only selectively echoed to clients.
	Code string
}

func (e *Error) Error() string { return e.Message }

func validationErr(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func forbiddenErr(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func notFoundErr(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func internalErr(msg string) *Error   { return &Error{Kind: KindInternal, Message: msg} }

func gatewayErr(code, msg string) *Error {
	return &Error{Kind: KindGateway, Message: msg, Code: code}
}
