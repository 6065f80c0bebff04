package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrNomeCompletoRequired    = errors.New("nome completo is required")
	ErrCPFInvalid              = errors.New("cpf is invalid")
	ErrCelularRequired         = errors.New("celular is required")
	ErrIdadeOutOfRange         = errors.New("idade must be between 12 and 100")
	ErrSexoInvalid             = errors.New("sexo must be Feminino or Masculino")
	ErrTamanhoBlusaInvalid     = errors.New("tamanho da blusa must be one of P, M, G, GG")
	ErrComprovanteRequired     = errors.New("comprovante de pagamento is required")
	ErrComprovanteType         = errors.New("comprovante file type is not allowed")
	ErrComprovanteTooLarge     = errors.New("comprovante file exceeds the size limit")
	ErrInscricaoStatusInvalid  = errors.New("invalid inscricao status provided")
	ErrConfirmSemComprovante   = errors.New("inscricao cannot be confirmed without a comprovante on file")
	ErrLoteNomeRequired        = errors.New("lote nome is required")
	ErrLoteCapacityInvalid     = errors.New("lote total de vagas must be positive")
	ErrSorteioTituloRequired   = errors.New("sorteio titulo is required")
	ErrSorteioSemSorteados     = errors.New("sorteio must have at least one drawn inscricao")
	ErrSorteioRodadasInvalid   = errors.New("sorteio rodadas must form a dense sequence starting at 1")
	ErrSorteioDuplicateEntrant = errors.New("sorteio contains a duplicated inscricao")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrAdminRoleInvalid        = errors.New("invalid admin role provided")

	// Ошибки конфликтов
	ErrCPFAlreadyRegistered = errors.New("cpf ja cadastrado")
	ErrLoteEsgotado         = errors.New("lote esgotado, aguarde o proximo lote")
	ErrNoActiveLote         = errors.New("nenhum lote vigente encontrado")
	ErrLoteNomeConflict     = errors.New("lote nome is already in use")
	ErrAdminEmailConflict   = errors.New("admin email is already in use")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrInscricaoNotFound = errors.New("inscricao not found")
	ErrLoteNotFound      = errors.New("lote not found")
	ErrSorteioNotFound   = errors.New("sorteio not found")
	ErrAdminUserNotFound = errors.New("admin user not found")
)
