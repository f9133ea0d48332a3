package securityeventsrepobridge

import "fmt"

// AssignInput hands an event to an analyst. A null assignedTo unassigns it.
type AssignInput struct {
	AssignedTo *string `json:"assignedTo"`
}

func (in AssignInput) Validate() error {
	if in.AssignedTo != nil && (*in.AssignedTo == "" || len(*in.AssignedTo) > 128) {
		return fmt.Errorf("assignedTo: must be 1 to 128 characters or null")
	}
	return nil
}
