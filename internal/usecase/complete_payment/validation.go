package complete_payment

import "fmt"

func validateRequest(req *Request) error {
	if len(req.Payload) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	if req.Signature == "" {
		return fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}
	return nil
}
