package mail

import "fmt"

// TransportError wraps every failure to hand a message to the SMTP server:
// malformed addresses, connection and TLS errors, authentication failures and
// recipient or data rejections. Transient and permanent failures are not
// distinguished.
type TransportError struct {
	// Op is the stage that failed: "address", "send".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
