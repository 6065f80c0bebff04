package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/projetojaiba/corrida-system/models"
	"github.com/projetojaiba/corrida-system/repositories"
	"github.com/projetojaiba/corrida-system/storage"
	"golang.org/x/sync/errgroup"
)

const (
	maxImageSize = 5 * 1024 * 1024
	maxPDFSize   = 10 * 1024 * 1024
)

// Типы comprovantes, принимаемые публичной формой.
var publicComprovanteTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// Админ может заменить comprovante также PDF-ом и прочими форматами сканов.
var adminComprovanteTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"image/tiff":      true,
	"application/pdf": true,
}

// FileInput — загружаемый файл comprovante.
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type InscricaoInput struct {
	NomeCompleto string
	CPF          string
	Idade        int
	Sexo         string
	Celular      string
	Email        string
	TamanhoBlusa string
}

type InscricaoService interface {
	// Create регистрирует участника в действующем лоте и загружает comprovante.
	Create(ctx context.Context, input InscricaoInput, file *FileInput) (*models.Inscricao, error)
	GetByID(ctx context.Context, id int) (*models.Inscricao, error)
	List(ctx context.Context, filter repositories.InscricaoFilter) ([]models.Inscricao, models.Pagination, error)
	ListConfirmed(ctx context.Context, loteID *int) ([]models.Inscricao, error)
	// UpdateStatus переводит заявку между статусами. Переход в confirmado
	// требует наличия comprovante (проверка до любой мутации).
	UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) (*models.Inscricao, error)
	// ReplaceComprovante загружает новый файл, обновляет ссылку и best-effort
	// удаляет старый файл.
	ReplaceComprovante(ctx context.Context, id int, file *FileInput) (*models.Inscricao, error)
	Stats(ctx context.Context) (*models.InscricaoStats, error)
}

type inscricaoService struct {
	inscricaoRepo repositories.InscricaoRepository
	loteRepo      repositories.LoteRepository
	uploader      storage.FileUploader
	email         *EmailService
}

func NewInscricaoService(
	inscricaoRepo repositories.InscricaoRepository,
	loteRepo repositories.LoteRepository,
	uploader storage.FileUploader,
	email *EmailService,
) InscricaoService {
	return &inscricaoService{
		inscricaoRepo: inscricaoRepo,
		loteRepo:      loteRepo,
		uploader:      uploader,
		email:         email,
	}
}

func (s *inscricaoService) Create(ctx context.Context, input InscricaoInput, file *FileInput) (*models.Inscricao, error) {
	input.CPF = digitsOnly(input.CPF)
	input.Celular = digitsOnly(input.Celular)

	if err := validateInscricaoInput(input); err != nil {
		return nil, err
	}
	if err := validateComprovante(file, publicComprovanteTypes); err != nil {
		return nil, err
	}

	if _, err := s.inscricaoRepo.GetByCPF(ctx, input.CPF); err == nil {
		return nil, ErrCPFAlreadyRegistered
	} else if !errors.Is(err, repositories.ErrInscricaoNotFound) {
		return nil, fmt.Errorf("failed to check existing cpf: %w", err)
	}

	lote, err := s.loteRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveLote) {
			return nil, ErrNoActiveLote
		}
		return nil, fmt.Errorf("failed to find active lote: %w", err)
	}

	count, err := s.inscricaoRepo.CountByLote(ctx, lote.ID)
	if err != nil {
		return nil, err
	}
	if count >= lote.TotalVagas {
		return nil, ErrLoteEsgotado
	}

	key := comprovanteKey(input.CPF, file.Name)
	uploadResult, err := s.uploader.Upload(ctx, key, file.ContentType, file.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload comprovante: %w", err)
	}

	inscricao := &models.Inscricao{
		NomeCompleto:       strings.TrimSpace(input.NomeCompleto),
		CPF:                input.CPF,
		Idade:              input.Idade,
		Sexo:               input.Sexo,
		Celular:            input.Celular,
		TamanhoBlusa:       input.TamanhoBlusa,
		Status:             models.InscricaoPendente,
		LoteID:             lote.ID,
		ComprovanteFileKey: &uploadResult.Key,
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		inscricao.Email = &email
	}

	if err := s.inscricaoRepo.Create(ctx, inscricao); err != nil {
		// Заявка не записана — убираем только что загруженный файл.
		if delErr := s.uploader.Delete(ctx, uploadResult.Key); delErr != nil {
			log.Printf("failed to delete comprovante %s after create error: %v", uploadResult.Key, delErr)
		}
		if errors.Is(err, repositories.ErrInscricaoCPFConflict) {
			return nil, ErrCPFAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create inscricao: %w", err)
	}

	inscricao.Lote = lote
	s.decorateComprovanteURL(inscricao)

	if s.email != nil && inscricao.Email != nil {
		if mailErr := s.email.SendInscricaoRecebida(*inscricao.Email, inscricao.NomeCompleto, lote.Nome); mailErr != nil {
			log.Printf("failed to send inscricao email to %s: %v", *inscricao.Email, mailErr)
		}
	}

	return inscricao, nil
}

func (s *inscricaoService) GetByID(ctx context.Context, id int) (*models.Inscricao, error) {
	inscricao, err := s.inscricaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}
	s.decorateComprovanteURL(inscricao)
	return inscricao, nil
}

func (s *inscricaoService) List(ctx context.Context, filter repositories.InscricaoFilter) ([]models.Inscricao, models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	inscricoes, total, err := s.inscricaoRepo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	for i := range inscricoes {
		s.decorateComprovanteURL(&inscricoes[i])
	}
	return inscricoes, models.NewPagination(filter.Page, filter.Limit, total), nil
}

func (s *inscricaoService) ListConfirmed(ctx context.Context, loteID *int) ([]models.Inscricao, error) {
	return s.inscricaoRepo.ListConfirmed(ctx, loteID)
}

func (s *inscricaoService) UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) (*models.Inscricao, error) {
	if !status.Valid() {
		return nil, ErrInscricaoStatusInvalid
	}

	inscricao, err := s.inscricaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}

	// Подтверждение возможно только при наличии comprovante.
	if status == models.InscricaoConfirmado {
		if inscricao.ComprovanteFileKey == nil || *inscricao.ComprovanteFileKey == "" {
			return nil, ErrConfirmSemComprovante
		}
	}

	if err := s.inscricaoRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, fmt.Errorf("failed to update inscricao %d status: %w", id, err)
	}

	inscricao.Status = status
	s.decorateComprovanteURL(inscricao)
	return inscricao, nil
}

func (s *inscricaoService) ReplaceComprovante(ctx context.Context, id int, file *FileInput) (*models.Inscricao, error) {
	if err := validateComprovante(file, adminComprovanteTypes); err != nil {
		return nil, err
	}

	inscricao, err := s.inscricaoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, err
	}

	key := comprovanteKey(inscricao.CPF, file.Name)
	uploadResult, err := s.uploader.Upload(ctx, key, file.ContentType, file.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload comprovante: %w", err)
	}

	if err := s.inscricaoRepo.UpdateComprovante(ctx, id, uploadResult.Key); err != nil {
		// Ссылка не обновлена — новый файл осиротел, убираем его.
		if delErr := s.uploader.Delete(ctx, uploadResult.Key); delErr != nil {
			log.Printf("failed to delete comprovante %s after update error: %v", uploadResult.Key, delErr)
		}
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return nil, ErrInscricaoNotFound
		}
		return nil, fmt.Errorf("failed to update comprovante reference: %w", err)
	}

	// Старый файл удаляем best-effort: неудача логируется и не валит операцию.
	if inscricao.ComprovanteFileKey != nil && *inscricao.ComprovanteFileKey != "" {
		if delErr := s.uploader.Delete(ctx, *inscricao.ComprovanteFileKey); delErr != nil {
			log.Printf("failed to delete old comprovante %s: %v", *inscricao.ComprovanteFileKey, delErr)
		}
	}

	inscricao.ComprovanteFileKey = &uploadResult.Key
	s.decorateComprovanteURL(inscricao)
	return inscricao, nil
}

func (s *inscricaoService) Stats(ctx context.Context) (*models.InscricaoStats, error) {
	stats := &models.InscricaoStats{}

	confirmado := models.InscricaoConfirmado
	pendente := models.InscricaoPendente
	cancelado := models.InscricaoCancelado

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.inscricaoRepo.CountByStatus(gCtx, nil)
		stats.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.inscricaoRepo.CountByStatus(gCtx, &confirmado)
		stats.Confirmados = n
		return err
	})
	g.Go(func() error {
		n, err := s.inscricaoRepo.CountByStatus(gCtx, &pendente)
		stats.Pendentes = n
		return err
	})
	g.Go(func() error {
		n, err := s.inscricaoRepo.CountByStatus(gCtx, &cancelado)
		stats.Cancelados = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute inscricao stats: %w", err)
	}
	return stats, nil
}

func (s *inscricaoService) decorateComprovanteURL(inscricao *models.Inscricao) {
	if inscricao.ComprovanteFileKey == nil || *inscricao.ComprovanteFileKey == "" {
		return
	}
	url := s.uploader.GetPublicURL(*inscricao.ComprovanteFileKey)
	if url != "" {
		inscricao.ComprovanteURL = &url
	}
}

func validateInscricaoInput(input InscricaoInput) error {
	if strings.TrimSpace(input.NomeCompleto) == "" {
		return ErrNomeCompletoRequired
	}
	if !ValidCPF(input.CPF) {
		return ErrCPFInvalid
	}
	if input.Celular == "" {
		return ErrCelularRequired
	}
	if input.Idade < 12 || input.Idade > 100 {
		return ErrIdadeOutOfRange
	}
	if !containsString(models.SexoOptions, input.Sexo) {
		return ErrSexoInvalid
	}
	if !containsString(models.TamanhosBlusa, input.TamanhoBlusa) {
		return ErrTamanhoBlusaInvalid
	}
	return nil
}

func validateComprovante(file *FileInput, allowedTypes map[string]bool) error {
	if file == nil || file.Size == 0 {
		return ErrComprovanteRequired
	}
	if !allowedTypes[file.ContentType] {
		return ErrComprovanteType
	}
	maxSize := int64(maxImageSize)
	if file.ContentType == "application/pdf" {
		maxSize = maxPDFSize
	}
	if file.Size > maxSize {
		return ErrComprovanteTooLarge
	}
	return nil
}

// ValidCPF проверяет контрольные цифры CPF (алгоритм mod 11).
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	allEqual := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	for _, c := range cpf {
		if c < '0' || c > '9' {
			return false
		}
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	rest := 11 - (sum % 11)
	if rest >= 10 {
		rest = 0
	}
	if rest != int(cpf[9]-'0') {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	rest = 11 - (sum % 11)
	if rest >= 10 {
		rest = 0
	}
	return rest == int(cpf[10]-'0')
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func containsString(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func comprovanteKey(cpf, fileName string) string {
	clean := strings.ReplaceAll(fileName, " ", "_")
	return fmt.Sprintf("comprovantes/comprovante_%d_%s_%s", time.Now().UnixNano(), cpf, clean)
}
