package model

// Dapp is the application-level identity of one integrated program.
type Dapp struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Logo    string `json:"logo"`
}

// ProgramEndpoint identifies one on-chain program the notifier listens to,
// together with the event types its IDL declares.
type ProgramEndpoint struct {
	Name    string
	Address string
	Events  []EventSpec
}
