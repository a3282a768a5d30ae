package database_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/pow"
	"github.com/ardanlabs/blockledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/blockledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// difficulty keeps the puzzles cheap for tests.
const difficulty = 2

func noEvents(v string, args ...any) {}

// mineChain builds a valid chain of the specified length.
func mineChain(t *testing.T, length int) []database.Block {
	chain := []database.Block{database.Genesis()}

	for len(chain) < length {
		prev := chain[len(chain)-1]

		proof, err := pow.Search(context.Background(), prev.Canonical(), difficulty)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to solve block %d: %s", failed, prev.Index+1, err)
		}

		trans := []database.Transaction{
			{Sender: "bill", Recipient: "ana", Amount: float64(len(chain))},
			database.NewRewardTx("miner", 1),
		}
		chain = append(chain, database.NewBlock(prev, proof, trans))
	}

	return chain
}

func TestHash(t *testing.T) {
	t.Log("Given the need to hash blocks deterministically.")
	{
		block := database.Block{
			Index:        2,
			PreviousHash: database.Genesis().Hash(),
			Proof:        42,
			Timestamp:    1700000000.5,
			Transactions: []database.Transaction{{Sender: "a", Recipient: "b", Amount: 2.5}},
		}

		h := block.Hash()
		if h != block.Hash() {
			t.Fatalf("\t%s\tShould get the same hash on repeated calls.", failed)
		}
		t.Logf("\t%s\tShould get the same hash on repeated calls.", success)

		if len(h) != 66 {
			t.Fatalf("\t%s\tShould get a 0x prefixed SHA-256 hex digest: %s", failed, h)
		}
		t.Logf("\t%s\tShould get a 0x prefixed SHA-256 hex digest.", success)

		changes := map[string]func(b *database.Block){
			"index":        func(b *database.Block) { b.Index++ },
			"previous":     func(b *database.Block) { b.PreviousHash = database.ZeroHash },
			"proof":        func(b *database.Block) { b.Proof++ },
			"timestamp":    func(b *database.Block) { b.Timestamp++ },
			"transactions": func(b *database.Block) { b.Transactions = []database.Transaction{{Sender: "a", Recipient: "b", Amount: 3}} },
		}
		for field, change := range changes {
			cpy := block
			change(&cpy)
			if cpy.Hash() == h {
				t.Fatalf("\t%s\tShould get a new hash when the %s changes.", failed, field)
			}
			t.Logf("\t%s\tShould get a new hash when the %s changes.", success, field)
		}

		empty := database.Genesis()
		empty.Transactions = nil
		if empty.Hash() != database.Genesis().Hash() {
			t.Fatalf("\t%s\tShould hash nil and empty transactions the same.", failed)
		}
		t.Logf("\t%s\tShould hash nil and empty transactions the same.", success)

		exp := `{"index":1,"previous_hash":"` + database.ZeroHash + `","proof":1,"timestamp":1,"transactions":[]}`
		if got := database.Genesis().Canonical(); got != exp {
			t.Logf("\t%s\tgot: %s", failed, got)
			t.Logf("\t%s\texp: %s", failed, exp)
			t.Fatalf("\t%s\tShould encode keys in sorted order.", failed)
		}
		t.Logf("\t%s\tShould encode keys in sorted order.", success)
	}
}

func TestValidateChain(t *testing.T) {
	chain := mineChain(t, 4)

	type table struct {
		name    string
		corrupt func(chain []database.Block) []database.Block
		err     error
	}

	tt := []table{
		{
			name:    "valid",
			corrupt: func(chain []database.Block) []database.Block { return chain },
		},
		{
			name:    "genesis-only",
			corrupt: func(chain []database.Block) []database.Block { return chain[:1] },
		},
		{
			name:    "empty",
			corrupt: func(chain []database.Block) []database.Block { return nil },
			err:     database.ErrEmptyChain,
		},
		{
			name: "previous-hash",
			corrupt: func(chain []database.Block) []database.Block {
				chain[2].PreviousHash = database.ZeroHash
				return chain
			},
			err: database.ErrBadPreviousHash,
		},
		{
			name: "proof",
			corrupt: func(chain []database.Block) []database.Block {
				for proof := chain[3].Proof + 1; ; proof++ {
					if !pow.IsValid(chain[2].Canonical(), proof, difficulty) {
						chain[3].Proof = proof
						return chain
					}
				}
			},
			err: database.ErrBadProof,
		},
		{
			name: "index",
			corrupt: func(chain []database.Block) []database.Block {
				return append(chain[:2], chain[3])
			},
			err: database.ErrBadIndex,
		},
		{
			name: "genesis",
			corrupt: func(chain []database.Block) []database.Block {
				chain[0].Timestamp = 2
				return chain
			},
			err: database.ErrGenesisMismatch,
		},
	}

	t.Log("Given the need to validate chains.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				cpy := make([]database.Block, len(chain))
				copy(cpy, chain)

				err := database.ValidateChain(tst.corrupt(cpy), difficulty)
				if !errors.Is(err, tst.err) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
					t.Fatalf("\t%s\tTest %d:\tShould get the expected validation result.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected validation result.", success, testID)

				var cie *database.ChainIntegrityError
				if tst.err != nil && tst.err != database.ErrEmptyChain && !errors.As(err, &cie) {
					t.Fatalf("\t%s\tTest %d:\tShould get a chain integrity error.", failed, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestDatabase(t *testing.T) {
	t.Log("Given the need to manage the chain.")
	{
		mem, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct memory storage: %s", failed, err)
		}

		db, err := database.New(mem, difficulty, noEvents)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a database: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct a database.", success)

		latest, err := db.LatestBlock()
		if err != nil || latest.Hash() != database.Genesis().Hash() {
			t.Fatalf("\t%s\tShould start with the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		chain := mineChain(t, 3)
		if err := db.Write(chain[2]); err == nil {
			t.Fatalf("\t%s\tShould not be able to write a block out of order.", failed)
		}
		t.Logf("\t%s\tShould not be able to write a block out of order.", success)

		if err := db.Write(chain[1]); err != nil {
			t.Fatalf("\t%s\tShould be able to write the next block: %s", failed, err)
		}
		if db.Length() != 2 {
			t.Fatalf("\t%s\tShould have 2 blocks, got %d.", failed, db.Length())
		}
		t.Logf("\t%s\tShould be able to write the next block.", success)

		bad := mineChain(t, 4)
		bad[1].PreviousHash = database.ZeroHash
		if err := db.Replace(bad); err == nil {
			t.Fatalf("\t%s\tShould not replace the chain with an invalid chain.", failed)
		}
		if db.Length() != 2 {
			t.Fatalf("\t%s\tShould keep the chain after a failed replace.", failed)
		}
		t.Logf("\t%s\tShould not replace the chain with an invalid chain.", success)

		longer := mineChain(t, 5)
		if err := db.Replace(longer); err != nil {
			t.Fatalf("\t%s\tShould be able to replace the chain: %s", failed, err)
		}
		latest, _ = db.LatestBlock()
		if db.Length() != 5 || latest.Hash() != longer[4].Hash() {
			t.Fatalf("\t%s\tShould hold the replaced chain.", failed)
		}
		t.Logf("\t%s\tShould be able to replace the chain.", success)

		reloaded, err := database.New(mem, difficulty, noEvents)
		if err != nil || reloaded.Length() != 5 {
			t.Fatalf("\t%s\tShould reload the replaced chain from storage: %v", failed, err)
		}
		t.Logf("\t%s\tShould reload the replaced chain from storage.", success)
	}
}

func TestDiskStorage(t *testing.T) {
	t.Log("Given the need to keep the chain on disk.")
	{
		dir := t.TempDir()

		dsk, err := disk.New(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct disk storage: %s", failed, err)
		}

		db, err := database.New(dsk, difficulty, noEvents)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a database: %s", failed, err)
		}

		chain := mineChain(t, 4)
		for _, block := range chain[1:] {
			if err := db.Write(block); err != nil {
				t.Fatalf("\t%s\tShould be able to write block %d: %s", failed, block.Index, err)
			}
		}
		t.Logf("\t%s\tShould be able to write blocks to disk.", success)

		reloaded, err := database.New(dsk, difficulty, noEvents)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reload the chain: %s", failed, err)
		}

		got := reloaded.Copy()
		if len(got) != len(chain) {
			t.Fatalf("\t%s\tShould reload %d blocks, got %d.", failed, len(chain), len(got))
		}
		for i := range chain {
			if got[i].Hash() != chain[i].Hash() {
				t.Fatalf("\t%s\tShould reload block %d unchanged.", failed, chain[i].Index)
			}
		}
		t.Logf("\t%s\tShould reload the chain unchanged.", success)

		if err := reloaded.Replace(chain[:2]); err != nil {
			t.Fatalf("\t%s\tShould be able to replace the chain on disk: %s", failed, err)
		}
		again, err := database.New(dsk, difficulty, noEvents)
		if err != nil || again.Length() != 2 {
			t.Fatalf("\t%s\tShould only find the replaced chain on disk: %v", failed, err)
		}
		t.Logf("\t%s\tShould only find the replaced chain on disk.", success)
	}
}

func TestDiskWrite(t *testing.T) {
	t.Log("Given the need to report every failed block write.")
	{
		dir := t.TempDir()

		dsk, err := disk.New(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct disk storage: %s", failed, err)
		}

		chain := mineChain(t, 2)

		long := chain[1]
		for j := 0; j < 10; j++ {
			long.Transactions = append(long.Transactions, database.Transaction{Sender: "bill", Recipient: "ana", Amount: 1})
		}

		for _, block := range []database.Block{long, chain[1]} {
			if err := dsk.Write(block); err != nil {
				t.Fatalf("\t%s\tShould be able to write block %d: %s", failed, block.Index, err)
			}
		}

		got, err := dsk.GetBlock(chain[1].Index)
		if err != nil || got.Hash() != chain[1].Hash() {
			t.Fatalf("\t%s\tShould read back the last write of block %d: %v", failed, chain[1].Index, err)
		}
		t.Logf("\t%s\tShould read back the last write of a block.", success)

		if err := os.RemoveAll(dir); err != nil {
			t.Fatalf("\t%s\tShould be able to remove the storage directory: %s", failed, err)
		}

		if err := dsk.Write(chain[1]); err == nil {
			t.Fatalf("\t%s\tShould get an error writing without a storage directory.", failed)
		}
		t.Logf("\t%s\tShould get an error writing without a storage directory.", success)
	}
}
