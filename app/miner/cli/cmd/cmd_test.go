package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newNode(t *testing.T, received chan<- database.Transaction) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /transactions/new", func(w http.ResponseWriter, r *http.Request) {
		var tx database.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- tx

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Transaction will be added to Block 2"})
	})

	mux.HandleFunc("GET /chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"chain": []database.Block{database.Genesis()}, "length": 1})
	})

	mux.HandleFunc("GET /valid-chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"validity": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()

	return out.String(), err
}

func TestCommands(t *testing.T) {
	received := make(chan database.Transaction, 1)
	srv := newNode(t, received)

	t.Log("Given the need to drive a node from the command line.")
	{
		t.Logf("\tTest 0:\tWhen sending a transaction.")
		{
			out, err := execute(t, "send", "-n", srv.URL, "-f", "bill", "-r", "ana", "-a", "5")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to send the transaction: %s", failed, err)
			}

			tx := <-received
			exp := database.Transaction{Sender: "bill", Recipient: "ana", Amount: 5}
			if tx != exp {
				t.Logf("\t%s\tTest 0:\tgot: %+v", failed, tx)
				t.Logf("\t%s\tTest 0:\texp: %+v", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould deliver the transaction to the node.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould deliver the transaction to the node.", success)

			if !strings.Contains(out, "Transaction will be added to Block 2") {
				t.Fatalf("\t%s\tTest 0:\tShould print the node's answer, got %q.", failed, out)
			}
			t.Logf("\t%s\tTest 0:\tShould print the node's answer.", success)
		}

		t.Logf("\tTest 1:\tWhen showing the chain.")
		{
			out, err := execute(t, "chain", "-n", srv.URL)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to show the chain: %s", failed, err)
			}

			if !strings.Contains(out, "blk[1]: hash["+database.Genesis().Hash()+"]") || !strings.Contains(out, "length[1]: valid[true]") {
				t.Fatalf("\t%s\tTest 1:\tShould print the chain and its validity, got %q.", failed, out)
			}
			t.Logf("\t%s\tTest 1:\tShould print the chain and its validity.", success)
		}

		t.Logf("\tTest 2:\tWhen the node can't be reached.")
		{
			if _, err := execute(t, "chain", "-n", "127.0.0.1:1"); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould get an error.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould get an error.", success)
		}
	}
}
