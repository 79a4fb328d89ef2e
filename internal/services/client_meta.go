package services

const unknownValue = "Unknown"

// ClientMetadata describes the client performing a redemption. Both
// methods are best effort.
type ClientMetadata interface {
	CurrentIP() string
	UserAgent() string
}

// StaticClientMetadata is ClientMetadata captured up front, e.g. from an
// HTTP request.
type StaticClientMetadata struct {
	IP    string
	Agent string
}

func (m StaticClientMetadata) CurrentIP() string {
	if m.IP == "" {
		return unknownValue
	}
	return m.IP
}

func (m StaticClientMetadata) UserAgent() string {
	if m.Agent == "" {
		return unknownValue
	}
	return m.Agent
}
