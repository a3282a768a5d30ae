package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/client"
	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newNode(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /last-block", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"last-block": database.Genesis()})
	})

	mux.HandleFunc("GET /chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"chain": []database.Block{database.Genesis()}, "length": 1})
	})

	mux.HandleFunc("POST /mine", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Proof uint64 `json:"proof"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		if req.Proof == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "New proof rejected"})
			return
		}

		json.NewEncoder(w).Encode(client.MineResult{Message: "New Block Forged", Index: 2, Proof: req.Proof})
	})

	mux.HandleFunc("POST /block/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode("Unregistered Node")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient(t *testing.T) {
	srv := newNode(t)
	ctx := context.Background()

	t.Log("Given the need to talk to a node over http.")
	{
		t.Logf("\tTest 0:\tWhen using an address without a scheme.")
		{
			clt := client.New(srv.Listener.Addr().String(), time.Second)

			block, err := clt.LastBlock(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get the last block: %s", failed, err)
			}
			if block.Hash() != database.Genesis().Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould get back the genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to get the last block.", success)

			chain, err := clt.Chain(ctx)
			if err != nil || len(chain) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to get the chain.", success)
		}

		t.Logf("\tTest 1:\tWhen submitting proofs.")
		{
			clt := client.New(srv.URL, time.Second)

			res, err := clt.Mine(ctx, 42, "miner")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine: %s", failed, err)
			}
			if res.Index != 2 || res.Proof != 42 {
				t.Fatalf("\t%s\tTest 1:\tShould get back the forged block, got %+v.", failed, res)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to mine.", success)

			if _, err := clt.Mine(ctx, 0, "miner"); !errors.Is(err, client.ErrProofRejected) {
				t.Fatalf("\t%s\tTest 1:\tShould get ErrProofRejected, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get ErrProofRejected for a bad proof.", success)
		}

		t.Logf("\tTest 2:\tWhen the node refuses a request.")
		{
			clt := client.New(srv.URL+"/", time.Second)

			_, err := clt.ProposeBlock(ctx, database.Genesis(), "localhost:9000")

			var se *client.StatusError
			if !errors.As(err, &se) {
				t.Fatalf("\t%s\tTest 2:\tShould get a StatusError, got %v.", failed, err)
			}
			if se.StatusCode != http.StatusBadRequest || se.Message != "Unregistered Node" {
				t.Fatalf("\t%s\tTest 2:\tShould decode the refusal, got %+v.", failed, se)
			}
			t.Logf("\t%s\tTest 2:\tShould decode the refusal.", success)
		}
	}
}
