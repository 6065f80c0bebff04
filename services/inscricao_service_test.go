package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/projetojaiba/corrida-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CPF с корректными контрольными цифрами.
const validTestCPF = "52998224725"

type fakeInscricaoRepo struct {
	byID  map[int]*models.Inscricao
	byCPF map[string]*models.Inscricao

	loteCount int
	createErr error
	updateErr error

	statusUpdates map[int]models.InscricaoStatus
	fileUpdates   map[int]string
}

func newFakeInscricaoRepo() *fakeInscricaoRepo {
	return &fakeInscricaoRepo{
		byID:          make(map[int]*models.Inscricao),
		byCPF:         make(map[string]*models.Inscricao),
		statusUpdates: make(map[int]models.InscricaoStatus),
		fileUpdates:   make(map[int]string),
	}
}

func (f *fakeInscricaoRepo) add(inscricao *models.Inscricao) {
	f.byID[inscricao.ID] = inscricao
	f.byCPF[inscricao.CPF] = inscricao
}

func (f *fakeInscricaoRepo) Create(ctx context.Context, inscricao *models.Inscricao) error {
	if f.createErr != nil {
		return f.createErr
	}
	inscricao.ID = len(f.byID) + 1
	f.add(inscricao)
	return nil
}

func (f *fakeInscricaoRepo) GetByID(ctx context.Context, id int) (*models.Inscricao, error) {
	inscricao, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrInscricaoNotFound
	}
	clone := *inscricao
	return &clone, nil
}

func (f *fakeInscricaoRepo) GetByCPF(ctx context.Context, cpf string) (*models.Inscricao, error) {
	inscricao, ok := f.byCPF[cpf]
	if !ok {
		return nil, repositories.ErrInscricaoNotFound
	}
	return inscricao, nil
}

func (f *fakeInscricaoRepo) List(ctx context.Context, filter repositories.InscricaoFilter) ([]models.Inscricao, int, error) {
	out := make([]models.Inscricao, 0, len(f.byID))
	for _, inscricao := range f.byID {
		out = append(out, *inscricao)
	}
	return out, len(out), nil
}

func (f *fakeInscricaoRepo) ListConfirmed(ctx context.Context, loteID *int) ([]models.Inscricao, error) {
	var out []models.Inscricao
	for _, inscricao := range f.byID {
		if inscricao.Status == models.InscricaoConfirmado {
			out = append(out, *inscricao)
		}
	}
	return out, nil
}

func (f *fakeInscricaoRepo) UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrInscricaoNotFound
	}
	f.statusUpdates[id] = status
	f.byID[id].Status = status
	return nil
}

func (f *fakeInscricaoRepo) UpdateComprovante(ctx context.Context, id int, fileKey string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrInscricaoNotFound
	}
	f.fileUpdates[id] = fileKey
	f.byID[id].ComprovanteFileKey = &fileKey
	return nil
}

func (f *fakeInscricaoRepo) CountByLote(ctx context.Context, loteID int) (int, error) {
	return f.loteCount, nil
}

func (f *fakeInscricaoRepo) CountByStatus(ctx context.Context, status *models.InscricaoStatus) (int, error) {
	if status == nil {
		return len(f.byID), nil
	}
	n := 0
	for _, inscricao := range f.byID {
		if inscricao.Status == *status {
			n++
		}
	}
	return n, nil
}

type fakeLoteRepo struct {
	active    *models.Lote
	activeErr error
}

func (f *fakeLoteRepo) Create(ctx context.Context, lote *models.Lote) error { return nil }
func (f *fakeLoteRepo) Update(ctx context.Context, lote *models.Lote) error { return nil }
func (f *fakeLoteRepo) GetByID(ctx context.Context, id int) (*models.Lote, error) {
	return nil, repositories.ErrLoteNotFound
}
func (f *fakeLoteRepo) GetActive(ctx context.Context) (*models.Lote, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active, nil
}
func (f *fakeLoteRepo) List(ctx context.Context) ([]models.Lote, error) { return nil, nil }
func (f *fakeLoteRepo) Activate(ctx context.Context, id int) error      { return nil }

type fakeUploader struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return &storage.UploadResult{Key: key, Location: "https://files.test/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return f.deleteErr
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://files.test/" + key
}

func validInscricaoInput() InscricaoInput {
	return InscricaoInput{
		NomeCompleto: "Joao da Silva",
		CPF:          "529.982.247-25",
		Idade:        30,
		Sexo:         "Masculino",
		Celular:      "(38) 99999-1234",
		Email:        "joao@example.com",
		TamanhoBlusa: "M",
	}
}

func validComprovante() *FileInput {
	return &FileInput{
		Name:        "comprovante pix.png",
		ContentType: "image/png",
		Size:        1024,
		Reader:      strings.NewReader("png-bytes"),
	}
}

func newTestInscricaoService(repo *fakeInscricaoRepo, lotes *fakeLoteRepo, uploader *fakeUploader) InscricaoService {
	return NewInscricaoService(repo, lotes, uploader, nil)
}

func TestCreateNormalizesAndPersists(t *testing.T) {
	repo := newFakeInscricaoRepo()
	lotes := &fakeLoteRepo{active: &models.Lote{ID: 2, Nome: "Lote 1", TotalVagas: 100}}
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, lotes, uploader)

	inscricao, err := svc.Create(context.Background(), validInscricaoInput(), validComprovante())
	require.NoError(t, err)

	assert.Equal(t, validTestCPF, inscricao.CPF, "cpf must be stored digits-only")
	assert.Equal(t, "38999991234", inscricao.Celular)
	assert.Equal(t, models.InscricaoPendente, inscricao.Status)
	assert.Equal(t, 2, inscricao.LoteID)
	require.NotNil(t, inscricao.ComprovanteFileKey)
	assert.Contains(t, *inscricao.ComprovanteFileKey, validTestCPF)
	require.NotNil(t, inscricao.ComprovanteURL)
	assert.Len(t, uploader.uploads, 1)
}

func TestCreateValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*InscricaoInput)
		wantErr error
	}{
		{"empty nome", func(in *InscricaoInput) { in.NomeCompleto = " " }, ErrNomeCompletoRequired},
		{"invalid cpf check digits", func(in *InscricaoInput) { in.CPF = "52998224724" }, ErrCPFInvalid},
		{"repeated digits cpf", func(in *InscricaoInput) { in.CPF = "11111111111" }, ErrCPFInvalid},
		{"missing celular", func(in *InscricaoInput) { in.Celular = "" }, ErrCelularRequired},
		{"too young", func(in *InscricaoInput) { in.Idade = 11 }, ErrIdadeOutOfRange},
		{"too old", func(in *InscricaoInput) { in.Idade = 101 }, ErrIdadeOutOfRange},
		{"bad sexo", func(in *InscricaoInput) { in.Sexo = "outro" }, ErrSexoInvalid},
		{"bad tamanho", func(in *InscricaoInput) { in.TamanhoBlusa = "XXG" }, ErrTamanhoBlusaInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeInscricaoRepo()
			lotes := &fakeLoteRepo{active: &models.Lote{ID: 1, TotalVagas: 10}}
			uploader := &fakeUploader{}
			svc := newTestInscricaoService(repo, lotes, uploader)

			input := validInscricaoInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input, validComprovante())
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, uploader.uploads, "nothing may be uploaded on invalid input")
		})
	}
}

func TestCreateComprovanteRules(t *testing.T) {
	repo := newFakeInscricaoRepo()
	lotes := &fakeLoteRepo{active: &models.Lote{ID: 1, TotalVagas: 10}}
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, lotes, uploader)

	_, err := svc.Create(context.Background(), validInscricaoInput(), nil)
	assert.ErrorIs(t, err, ErrComprovanteRequired)

	// PDF не принимается в публичной форме.
	pdf := validComprovante()
	pdf.ContentType = "application/pdf"
	_, err = svc.Create(context.Background(), validInscricaoInput(), pdf)
	assert.ErrorIs(t, err, ErrComprovanteType)

	big := validComprovante()
	big.Size = maxImageSize + 1
	_, err = svc.Create(context.Background(), validInscricaoInput(), big)
	assert.ErrorIs(t, err, ErrComprovanteTooLarge)
}

func TestCreateRejectsDuplicateCPF(t *testing.T) {
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 1, CPF: validTestCPF})
	lotes := &fakeLoteRepo{active: &models.Lote{ID: 1, TotalVagas: 10}}
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, lotes, uploader)

	_, err := svc.Create(context.Background(), validInscricaoInput(), validComprovante())
	assert.ErrorIs(t, err, ErrCPFAlreadyRegistered)
	assert.Empty(t, uploader.uploads)
}

func TestCreateRequiresActiveLoteWithVagas(t *testing.T) {
	repo := newFakeInscricaoRepo()
	uploader := &fakeUploader{}

	svc := newTestInscricaoService(repo, &fakeLoteRepo{activeErr: repositories.ErrNoActiveLote}, uploader)
	_, err := svc.Create(context.Background(), validInscricaoInput(), validComprovante())
	assert.ErrorIs(t, err, ErrNoActiveLote)

	repo.loteCount = 10
	svc = newTestInscricaoService(repo, &fakeLoteRepo{active: &models.Lote{ID: 1, TotalVagas: 10}}, uploader)
	_, err = svc.Create(context.Background(), validInscricaoInput(), validComprovante())
	assert.ErrorIs(t, err, ErrLoteEsgotado)
	assert.Empty(t, uploader.uploads)
}

func TestCreateDeletesUploadedFileWhenInsertFails(t *testing.T) {
	repo := newFakeInscricaoRepo()
	repo.createErr = errors.New("insert failed")
	lotes := &fakeLoteRepo{active: &models.Lote{ID: 1, TotalVagas: 10}}
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, lotes, uploader)

	_, err := svc.Create(context.Background(), validInscricaoInput(), validComprovante())
	require.Error(t, err)

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, uploader.uploads, uploader.deletes, "orphaned upload must be removed")
}

func TestUpdateStatusConfirmRequiresComprovante(t *testing.T) {
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 5, CPF: validTestCPF, Status: models.InscricaoPendente})
	svc := newTestInscricaoService(repo, &fakeLoteRepo{}, &fakeUploader{})

	_, err := svc.UpdateStatus(context.Background(), 5, models.InscricaoConfirmado)
	assert.ErrorIs(t, err, ErrConfirmSemComprovante)
	assert.Empty(t, repo.statusUpdates, "status must not change without comprovante")
}

func TestUpdateStatusTransitions(t *testing.T) {
	key := "comprovantes/ok.png"
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 5, CPF: validTestCPF, Status: models.InscricaoPendente, ComprovanteFileKey: &key})
	svc := newTestInscricaoService(repo, &fakeLoteRepo{}, &fakeUploader{})

	inscricao, err := svc.UpdateStatus(context.Background(), 5, models.InscricaoConfirmado)
	require.NoError(t, err)
	assert.Equal(t, models.InscricaoConfirmado, inscricao.Status)

	inscricao, err = svc.UpdateStatus(context.Background(), 5, models.InscricaoCancelado)
	require.NoError(t, err)
	assert.Equal(t, models.InscricaoCancelado, inscricao.Status)

	_, err = svc.UpdateStatus(context.Background(), 5, models.InscricaoStatus("aprovado"))
	assert.ErrorIs(t, err, ErrInscricaoStatusInvalid)

	_, err = svc.UpdateStatus(context.Background(), 999, models.InscricaoCancelado)
	assert.ErrorIs(t, err, ErrInscricaoNotFound)
}

func TestReplaceComprovanteSwapsFiles(t *testing.T) {
	oldKey := "comprovantes/old.png"
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 3, CPF: validTestCPF, ComprovanteFileKey: &oldKey})
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, &fakeLoteRepo{}, uploader)

	// Админ может заменить comprovante PDF-ом.
	pdf := &FileInput{Name: "scan.pdf", ContentType: "application/pdf", Size: 2048, Reader: strings.NewReader("pdf")}
	inscricao, err := svc.ReplaceComprovante(context.Background(), 3, pdf)
	require.NoError(t, err)

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, uploader.uploads[0], *inscricao.ComprovanteFileKey)
	assert.Equal(t, []string{oldKey}, uploader.deletes, "old file is removed best-effort")
}

func TestReplaceComprovanteDeletesNewFileWhenUpdateFails(t *testing.T) {
	oldKey := "comprovantes/old.png"
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 3, CPF: validTestCPF, ComprovanteFileKey: &oldKey})
	repo.updateErr = errors.New("update failed")
	uploader := &fakeUploader{}
	svc := newTestInscricaoService(repo, &fakeLoteRepo{}, uploader)

	_, err := svc.ReplaceComprovante(context.Background(), 3, validComprovante())
	require.Error(t, err)

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, uploader.uploads, uploader.deletes, "new file must not be left orphaned")
}

func TestStatsAggregatesCounts(t *testing.T) {
	repo := newFakeInscricaoRepo()
	repo.add(&models.Inscricao{ID: 1, CPF: "1", Status: models.InscricaoConfirmado})
	repo.add(&models.Inscricao{ID: 2, CPF: "2", Status: models.InscricaoConfirmado})
	repo.add(&models.Inscricao{ID: 3, CPF: "3", Status: models.InscricaoPendente})
	repo.add(&models.Inscricao{ID: 4, CPF: "4", Status: models.InscricaoCancelado})
	svc := newTestInscricaoService(repo, &fakeLoteRepo{}, &fakeUploader{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Confirmados)
	assert.Equal(t, 1, stats.Pendentes)
	assert.Equal(t, 1, stats.Cancelados)
}

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF(validTestCPF))
	assert.False(t, ValidCPF("52998224724"))
	assert.False(t, ValidCPF("00000000000"))
	assert.False(t, ValidCPF("5299822472"))
	assert.False(t, ValidCPF("5299822472a"))
}
