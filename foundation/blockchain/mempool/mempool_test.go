package mempool_test

import (
	"sync"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Transaction
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Transaction{
				{Sender: "bill", Recipient: "ana", Amount: 10},
				{Sender: "ana", Recipient: "kevin", Amount: 5.5},
				{Sender: "kevin", Recipient: "bill", Amount: 1},
			},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for i, tx := range tst.txs {
						if n := mp.Add(tx); n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould get back the new count, got %d.", failed, testID, n)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add new transactions.", success, testID)

					for i, tx := range mp.Copy() {
						if tx != tst.txs[i] {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep arrival order.", success, testID)

					trans := mp.Flush()
					if len(trans) != len(tst.txs) || mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould flush every transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould flush every transaction.", success, testID)

					mp.Add(database.Transaction{Sender: "late", Recipient: "ana", Amount: 1})
					mp.Restore(trans)
					got := mp.Copy()
					if len(got) != len(tst.txs)+1 || got[0] != tst.txs[0] || got[len(got)-1].Sender != "late" {
						t.Fatalf("\t%s\tTest %d:\tShould restore flushed transactions at the front.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould restore flushed transactions at the front.", success, testID)

					if trans := mp.Flush(); len(trans) != len(tst.txs)+1 || mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould flush the restored transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould flush the restored transactions.", success, testID)

					if trans := mp.Flush(); trans == nil || len(trans) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould flush an empty, non nil set.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould flush an empty, non nil set.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestConcurrentFlush(t *testing.T) {
	t.Log("Given the need to never lose a transaction during a flush.")
	{
		mp := mempool.New()

		const adds = 1000
		var wg sync.WaitGroup
		wg.Add(1)

		var flushed int
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				flushed += len(mp.Flush())
			}
		}()

		for j := 0; j < adds; j++ {
			mp.Add(database.Transaction{Sender: "a", Recipient: "b", Amount: 1})
		}
		wg.Wait()

		if total := flushed + mp.Count(); total != adds {
			t.Fatalf("\t%s\tShould account for every transaction, got %d.", failed, total)
		}
		t.Logf("\t%s\tShould account for every transaction.", success)
	}
}
