package private

import "github.com/ardanlabs/blockledger/foundation/blockchain/database"

type proposal struct {
	Block *database.Block `json:"block"`
	Node  *string         `json:"node"`
}

type registration struct {
	Nodes []string `json:"nodes"`
}

type registered struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type peers struct {
	Nodes []string `json:"nodes"`
}

type resolved struct {
	Message string           `json:"message"`
	Chain   []database.Block `json:"chain"`
}
