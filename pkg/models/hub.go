package models

// HubStatus is the projection of the NoqNoq hub /status response that the
// organism payload needs.
type HubStatus struct {
	ActiveNodes  int
	MessageCount string
}
