package statements

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankrec/internal/actionlog"
	"github.com/cleared-dev/bankrec/internal/filestore"
	"github.com/cleared-dev/bankrec/internal/importer"
	"github.com/cleared-dev/bankrec/internal/logger"
	"github.com/cleared-dev/bankrec/internal/model"
	"github.com/cleared-dev/bankrec/internal/store"
)

var testNow = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type env struct {
	svc     *Service
	db      *store.DB
	scope   model.Scope
	account *model.BankAccount
	actions string
}

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := store.Open(filepath.Join(dir, "bankrec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init(ctx))

	company := &model.Company{Name: "Comercial Andina S.A."}
	require.NoError(t, db.CreateCompany(ctx, company))
	bank := &model.Bank{SBSCode: "001", Name: "Banco Pichincha C.A.", ShortName: "PICHINCHA"}
	require.NoError(t, db.UpsertBank(ctx, bank))
	account := &model.BankAccount{
		CompanyID:      company.ID,
		BankID:         bank.ID,
		Number:         "2200123456",
		Type:           model.AccountTypeChecking,
		Currency:       model.CurrencyUSD,
		OpeningBalance: dec("5000"),
		OpeningDate:    date(2025, 1, 1),
		Active:         true,
	}
	require.NoError(t, db.CreateAccount(ctx, account))

	files, err := filestore.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	actions := filepath.Join(dir, "logs", "actions.csv")
	svc := NewService(db, files, Options{
		ActionsFile: actions,
		Now:         func() time.Time { return testNow },
	})
	return env{
		svc:     svc,
		db:      db,
		scope:   model.Scope{CompanyID: company.ID, Actor: "ana"},
		account: account,
		actions: actions,
	}
}

func (e env) upload(t *testing.T, fixture string) *model.Statement {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", fixture))
	require.NoError(t, err)
	return e.uploadBytes(t, fixture, data)
}

func (e env) uploadBytes(t *testing.T, name string, data []byte) *model.Statement {
	t.Helper()
	st, err := e.svc.Upload(context.Background(), e.scope, UploadParams{
		AccountID:      e.account.ID,
		FileName:       name,
		Content:        bytes.NewReader(data),
		PeriodStart:    date(2025, 10, 1),
		PeriodEnd:      date(2025, 10, 31),
		OpeningBalance: dec("5000"),
		ClosingBalance: dec("6335"),
	})
	require.NoError(t, err)
	return st
}

func TestUpload(t *testing.T) {
	e := setup(t)
	st := e.upload(t, "pichincha_movimientos.csv")

	assert.Equal(t, model.StatementUploaded, st.Status)
	assert.Equal(t, "ana", st.UploadedBy)
	assert.Equal(t, "pichincha_movimientos.csv", st.OriginalName)
	assert.True(t, strings.HasSuffix(st.FileName, ".csv"))
	assert.NotEqual(t, st.OriginalName, st.FileName)
}

func TestUploadRejectsInvalidPeriod(t *testing.T) {
	e := setup(t)
	_, err := e.svc.Upload(context.Background(), e.scope, UploadParams{
		AccountID:   e.account.ID,
		FileName:    "x.csv",
		Content:     strings.NewReader("x"),
		PeriodStart: date(2025, 11, 1),
		PeriodEnd:   date(2025, 10, 1),
	})
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

func TestUploadRejectsForeignAccount(t *testing.T) {
	e := setup(t)
	other := model.Scope{CompanyID: e.scope.CompanyID + 1, Actor: "eve"}
	_, err := e.svc.Upload(context.Background(), other, UploadParams{
		AccountID:   e.account.ID,
		FileName:    "x.csv",
		Content:     strings.NewReader("x"),
		PeriodStart: date(2025, 10, 1),
		PeriodEnd:   date(2025, 10, 31),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// cancelOnEOF cancels a context once its content has been read.
type cancelOnEOF struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c cancelOnEOF) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err == io.EOF {
		c.cancel()
	}
	return n, err
}

func TestUploadRemovesFileWhenStatementFails(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := e.svc.Upload(ctx, e.scope, UploadParams{
		AccountID:   e.account.ID,
		FileName:    "octubre.csv",
		Content:     cancelOnEOF{r: strings.NewReader("Fecha,Descripcion\n"), cancel: cancel},
		PeriodStart: date(2025, 10, 1),
		PeriodEnd:   date(2025, 10, 31),
	})
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(e.svc.files.FullPath(""))
	require.NoError(t, err)
	assert.Empty(t, entries, "the stored file is cleaned up")

	list, err := e.svc.List(context.Background(), e.scope, e.account.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProcessPichincha(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")

	out := e.svc.Process(ctx, e.scope, st.ID)
	require.Equal(t, LevelSuccess, out.Level, out.Message)
	assert.Equal(t, importer.FormatPichincha, out.Format)
	assert.Equal(t, 5, out.Lines)
	assert.Equal(t, "Procesado exitosamente: 5 movimientos", out.Message)

	got, err := e.svc.Get(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementProcessed, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, testNow.Equal(*got.ProcessedAt))

	lines, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)
	require.Len(t, lines, 5)
	for _, l := range lines {
		debit, credit := l.Movement.Split()
		assert.NotEqual(t, debit.Valid, credit.Valid, "line %d", l.ID)
		assert.False(t, l.Movement.Amount().IsNegative())
	}
}

func TestProcessedLinesMatchDeclaredBalance(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")
	require.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, st.ID).Level)

	lines, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)

	running := st.OpeningBalance
	for _, l := range lines {
		running = running.Add(l.Movement.Signed())
		require.True(t, l.Balance.Valid)
		assert.True(t, running.Equal(l.Balance.Decimal), "after line %d: %s vs %s", l.ID, running, l.Balance.Decimal)
	}
	assert.True(t, running.Equal(st.ClosingBalance))
}

func TestProcessOnlyFromUploaded(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")
	require.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, st.ID).Level)

	out := e.svc.Process(ctx, e.scope, st.ID)
	assert.Equal(t, LevelWarning, out.Level)
	assert.ErrorIs(t, out.Err, ErrInvalidStatus)
}

func TestProcessZeroYield(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "malformed.csv")

	out := e.svc.Process(ctx, e.scope, st.ID)
	assert.Equal(t, LevelError, out.Level)
	assert.NotEmpty(t, out.Reasons)
	assert.True(t, strings.HasPrefix(out.Message, "No se procesaron movimientos. Errores: "))

	got, err := e.svc.Get(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementError, got.Status)
	assert.Equal(t, out.Message, got.Notes)

	lines, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestProcessUnsupportedFormat(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "generic.csv")

	out := e.svc.Process(ctx, e.scope, st.ID)
	assert.Equal(t, LevelError, out.Level)
	assert.ErrorIs(t, out.Err, importer.ErrUnsupportedFormat)
	assert.Equal(t, importer.FormatGeneric, out.Format)
	assert.True(t, strings.HasPrefix(out.Message, "Error: "))
}

func TestProcessEmptyFile(t *testing.T) {
	e := setup(t)
	st := e.uploadBytes(t, "vacio.csv", []byte("  \n"))

	out := e.svc.Process(context.Background(), e.scope, st.ID)
	assert.Equal(t, LevelError, out.Level)
	assert.ErrorIs(t, out.Err, importer.ErrEmptyFile)
	assert.ErrorIs(t, out.Err, importer.ErrUnsupportedFormat)
	assert.Equal(t, importer.FormatUnknown, out.Format)
	assert.True(t, strings.HasPrefix(out.Message, "Error: "))
}

type panickingParser struct{}

func (panickingParser) Parse(io.Reader) (*importer.Result, error) { panic("index out of range") }
func (panickingParser) Format() importer.Format                  { return importer.FormatGeneric }

func TestProcessSelectedSurvivesParserPanic(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	reg := importer.NewRegistry()
	reg.Register(panickingParser{})
	e.svc.parsers = reg

	first := e.upload(t, "pichincha_movimientos.csv")
	second := e.upload(t, "pacifico.csv")

	sum := e.svc.ProcessSelected(ctx, e.scope, []int64{first.ID, second.ID})
	assert.Equal(t, 2, sum.Errors)
	require.Len(t, sum.Outcomes, 2)
	assert.True(t, strings.HasPrefix(sum.Outcomes[0].Message, "Error inesperado: "))

	for _, id := range []int64{first.ID, second.ID} {
		got, err := e.svc.Get(ctx, e.scope, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatementError, got.Status, "statement %d", id)
	}

	// Failed statements can be reset and processed with working parsers.
	e.svc.parsers = importer.DefaultRegistry()
	assert.Equal(t, 1, e.svc.Reset(ctx, e.scope, []int64{first.ID}).Success)
	assert.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, first.ID).Level)
}

func TestProcessMissingFile(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")
	require.NoError(t, e.svc.files.Delete(st.FileName))

	out := e.svc.Process(ctx, e.scope, st.ID)
	assert.Equal(t, LevelError, out.Level)
	assert.True(t, strings.HasPrefix(out.Message, "Error inesperado: "))

	got, err := e.svc.Get(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementError, got.Status)
}

func TestProcessLogsEvents(t *testing.T) {
	e := setup(t)
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))
	st := e.upload(t, "pacifico.csv")

	out := e.svc.Process(ctx, e.scope, st.ID)
	require.Equal(t, LevelSuccess, out.Level, out.Message)
	assert.Contains(t, buf.String(), `"message":"statement_processed"`)
	assert.Contains(t, buf.String(), `"format":"pacifico"`)
}

func TestResetAndReprocessIsIdempotent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")
	require.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, st.ID).Level)
	first, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)

	sum := e.svc.Reset(ctx, e.scope, []int64{st.ID})
	require.Equal(t, 1, sum.Success)

	got, err := e.svc.Get(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementUploaded, got.Status)
	assert.Equal(t, "Preparado para reprocesamiento", got.Notes)
	assert.Nil(t, got.ProcessedAt)
	empty, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, st.ID).Level)
	second, err := e.svc.Lines(ctx, e.scope, st.ID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.Equal(t, first[i].Movement.Side(), second[i].Movement.Side())
		assert.True(t, first[i].Movement.Amount().Equal(second[i].Movement.Amount()))
	}
}

func TestResetRejectsUploaded(t *testing.T) {
	e := setup(t)
	st := e.upload(t, "pichincha_movimientos.csv")

	sum := e.svc.Reset(context.Background(), e.scope, []int64{st.ID})
	assert.Equal(t, 1, sum.Warnings)
	assert.ErrorIs(t, sum.Outcomes[0].Err, ErrInvalidStatus)
}

func TestMarkError(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	st := e.upload(t, "pichincha_movimientos.csv")

	sum := e.svc.MarkError(ctx, e.scope, []int64{st.ID, 9999})
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 1, sum.Errors)

	got, err := e.svc.Get(ctx, e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatementError, got.Status)
	assert.Equal(t, "Marcado manualmente como error", got.Notes)

	// error statements can be reset and processed again
	require.Equal(t, 1, e.svc.Reset(ctx, e.scope, []int64{st.ID}).Success)
	assert.Equal(t, LevelSuccess, e.svc.Process(ctx, e.scope, st.ID).Level)
}

func TestProcessSelectedIsNotFailFast(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	bad := e.upload(t, "malformed.csv")
	good := e.upload(t, "pacifico.csv")

	sum := e.svc.ProcessSelected(ctx, e.scope, []int64{bad.ID, 9999, good.ID})
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 2, sum.Errors)
	assert.Equal(t, []int64{bad.ID, 9999, good.ID}, sum.IDs())
	assert.Equal(t, "success=1 warnings=0 errors=2", sum.String())

	entries, err := actionlog.Read(e.actions)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "process_statements", entries[0].Action)
	assert.Equal(t, "ana", entries[0].Actor)
	assert.Equal(t, sum.String(), entries[0].Result)
	assert.Equal(t, []int64{bad.ID, 9999, good.ID}, entries[0].StatementIDs)
}

func TestDetect(t *testing.T) {
	e := setup(t)
	st := e.upload(t, "pacifico_semicolon.csv")
	format, err := e.svc.Detect(context.Background(), e.scope, st.ID)
	require.NoError(t, err)
	assert.Equal(t, importer.FormatPacifico, format)
}
