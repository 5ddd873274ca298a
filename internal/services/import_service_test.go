package services

import (
	"context"
	"strings"
	"testing"

	"dompet/internal/models"
	"dompet/internal/testutil"
)

const importStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>IDR
<BANKACCTFROM>
<BANKID>014
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301000000[0:GMT]
<DTEND>20240331000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>-75000.00
<FITID>20240305001
<NAME>WARUNG MAKAN SEDERHANA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240325090000[0:GMT]
<TRNAMT>9500000.00
<FITID>20240325001
<NAME>PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>9425000.00
<DTASOF>20240331000000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestImportStatement(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewImportService(db, 0)
	accounts := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, 0)

	t.Run("first_import", func(t *testing.T) {
		result, err := svc.ImportStatement(ctx, user.ID, account.ID, strings.NewReader(importStatement))
		testutil.AssertNoError(t, err)

		if result.Imported != 2 || result.Skipped != 0 {
			t.Fatalf("expected 2 imported 0 skipped, got %+v", result)
		}

		var txns []models.Transaction
		db.Where("account_id = ?", account.ID).Order("date ASC").Find(&txns)
		if len(txns) != 2 {
			t.Fatalf("expected 2 stored transactions, got %d", len(txns))
		}
		if txns[0].Type != models.TransactionTypeExpense || txns[0].Amount != 75000 {
			t.Errorf("unexpected debit %+v", txns[0])
		}
		if txns[0].ExternalID == nil || *txns[0].ExternalID != "20240305001" {
			t.Errorf("expected external id to be stored, got %v", txns[0].ExternalID)
		}
		if txns[0].CategoryID != nil {
			t.Error("imported transactions must be uncategorized")
		}

		balance, err := accounts.GetAccountByID(ctx, user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if balance.Balance != 9425000 {
			t.Errorf("expected balance 9425000, got %d", balance.Balance)
		}
	})

	t.Run("reimport_skips_known_lines", func(t *testing.T) {
		result, err := svc.ImportStatement(ctx, user.ID, account.ID, strings.NewReader(importStatement))
		testutil.AssertNoError(t, err)

		if result.Imported != 0 || result.Skipped != 2 {
			t.Errorf("expected 0 imported 2 skipped, got %+v", result)
		}
	})

	t.Run("other_account_imports_again", func(t *testing.T) {
		other := testutil.CreateTestAccount(t, db, user.ID)
		result, err := svc.ImportStatement(ctx, user.ID, other.ID, strings.NewReader(importStatement))
		testutil.AssertNoError(t, err)

		if result.Imported != 2 {
			t.Errorf("expected dedupe to be per account, got %+v", result)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ImportStatement(ctx, user.ID, account.ID, strings.NewReader("not a statement"))
		testutil.AssertAppError(t, err, "INVALID_STATEMENT")
	})

	t.Run("unknown_account", func(t *testing.T) {
		_, err := svc.ImportStatement(ctx, user.ID, "0190a6b2-0000-7000-8000-000000000000", strings.NewReader(importStatement))
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}
