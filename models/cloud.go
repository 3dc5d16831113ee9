package models

// CloudService is a read-only projection of one service in the organization,
// fetched live from the cloud API and never persisted.
type CloudService struct {
	ServiceName string `json:"serviceName"`
}

// CloudInstance is a read-only projection of one running instance of a service.
type CloudInstance struct {
	InstanceName string `json:"instanceName"`
	InstanceURL  string `json:"instanceUrl"`
}
