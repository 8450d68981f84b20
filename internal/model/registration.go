package model

// RegistrationURI binds GET /events/:id/registrations/:address.
type RegistrationURI struct {
	ID      string `uri:"id" binding:"required"`
	Address string `uri:"address" binding:"required,eth_addr"`
}

// RegistrationStatusResponse answers "is this address registered for this event".
type RegistrationStatusResponse struct {
	EventID    uint64  `json:"event_id"`
	Address    Address `json:"address"`
	Registered bool    `json:"registered"`
}

// RegistryInfoResponse is the read surface of the registry itself.
type RegistryInfoResponse struct {
	Owner                        Address `json:"owner"`
	RequiredMembershipCollection Address `json:"required_membership_collection"`
	EventCount                   uint64  `json:"event_count"`
}
