package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/sony/gobreaker/v2"
)

const (
	// ContentType MIME-тип публикуемого документа
	ContentType = "text/xml"
	// DefaultHost хост публичных ссылок по умолчанию
	DefaultHost = "s3.amazonaws.com"

	breakerName = "s3-upload"
)

// accessErrorCodes коды ответов S3, означающие проблему с учетными данными, правами или запросом
var accessErrorCodes = map[string]struct{}{
	"AccessDenied":          {},
	"AllAccessDisabled":     {},
	"AccountProblem":        {},
	"ExpiredToken":          {},
	"InvalidAccessKeyId":    {},
	"InvalidToken":          {},
	"SignatureDoesNotMatch": {},
	"InvalidBucketName":     {},
	"NoSuchBucket":          {},
	"InvalidArgument":       {},
	"InvalidRequest":        {},
}

// PutObjectAPI часть клиента S3, нужная для публикации
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config параметры объектного хранилища
type Config struct {
	Region   string
	Bucket   string
	Key      string
	Secret   string
	Endpoint string
	Host     string
	// BreakerFailures количество подряд идущих сетевых ошибок, после которого публикация приостанавливается
	BreakerFailures uint32
	// BreakerTimeout время, через которое после приостановки пробуется новая публикация
	BreakerTimeout time.Duration
}

// NewS3Client создает клиент S3 со статическими учетными данными.
// Если задан Endpoint, используется S3-совместимое хранилище с path-style адресацией.
func NewS3Client(cfg Config) *s3.Client {
	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// S3Uploader публикует документы в бакет с публичным доступом на чтение
type S3Uploader struct {
	client  PutObjectAPI
	config  Config
	breaker *gobreaker.CircuitBreaker[*s3.PutObjectOutput]
	logger  interfaces.LoggerPort
}

// NewS3Uploader создает новый экземпляр S3Uploader
func NewS3Uploader(client PutObjectAPI, cfg Config, logger interfaces.LoggerPort) *S3Uploader {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 5 * time.Minute
	}

	u := &S3Uploader{
		client: client,
		config: cfg,
		logger: logger,
	}

	metrics.UploadBreakerState.Set(0)

	u.breaker = gobreaker.NewCircuitBreaker[*s3.PutObjectOutput](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Только сетевые ошибки говорят о недоступности хранилища
		IsSuccessful: func(err error) bool {
			return err == nil || Classify(err).Kind != interfaces.UploadErrorNetwork
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UploadBreakerState.Set(stateToFloat(to))
			u.logger.Warn("Изменилось состояние circuit breaker публикации",
				interfaces.LogField{Key: "breaker", Value: name},
				interfaces.LogField{Key: "from", Value: from.String()},
				interfaces.LogField{Key: "to", Value: to.String()},
			)
		},
	})

	return u
}

// Upload публикует data под именем name с типом text/xml и правом public-read.
// Возвращает публичный адрес файла или *interfaces.UploadError.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", &interfaces.UploadError{Kind: interfaces.UploadErrorAccess, Err: errors.New("empty object name")}
	}

	_, err := u.breaker.Execute(func() (*s3.PutObjectOutput, error) {
		return u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(u.config.Bucket),
			Key:           aws.String(name),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(ContentType),
			ACL:           types.ObjectCannedACLPublicRead,
		})
	})
	if err != nil {
		uploadErr := Classify(err)
		metrics.UploadErrors.WithLabelValues(string(uploadErr.Kind)).Inc()
		return "", uploadErr
	}

	url := u.PublicURL(name)
	u.logger.InfoWithContext(ctx, "Документ опубликован в объектное хранилище",
		interfaces.LogField{Key: "bucket", Value: u.config.Bucket},
		interfaces.LogField{Key: "name", Value: name},
		interfaces.LogField{Key: "bytes", Value: len(data)},
		interfaces.LogField{Key: "url", Value: url},
	)

	return url, nil
}

// PublicURL возвращает адрес вида https://<host>/<region>/<bucket>/<name>
func (u *S3Uploader) PublicURL(name string) string {
	host := strings.TrimSuffix(strings.TrimPrefix(u.config.Host, "https://"), "/")
	return fmt.Sprintf("https://%s/%s/%s/%s", host, u.config.Region, u.config.Bucket, name)
}

// Classify относит ошибку публикации к одному из видов Access, Network или Unknown
func Classify(err error) *interfaces.UploadError {
	var uploadErr *interfaces.UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr
	}

	kind := interfaces.UploadErrorUnknown

	var (
		invalidParams *smithy.InvalidParamsError
		apiErr        smithy.APIError
		statusErr     interface{ HTTPStatusCode() int }
		sendErr       *smithyhttp.RequestSendError
		netErr        net.Error
	)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		kind = interfaces.UploadErrorNetwork
	case errors.As(err, &invalidParams):
		kind = interfaces.UploadErrorAccess
	case errors.As(err, &apiErr) && isAccessCode(apiErr.ErrorCode()):
		kind = interfaces.UploadErrorAccess
	case errors.As(err, &statusErr) && isAccessStatus(statusErr.HTTPStatusCode()):
		kind = interfaces.UploadErrorAccess
	case errors.As(err, &sendErr), errors.As(err, &netErr):
		kind = interfaces.UploadErrorNetwork
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = interfaces.UploadErrorNetwork
	}

	return &interfaces.UploadError{Kind: kind, Err: err}
}

func isAccessCode(code string) bool {
	_, ok := accessErrorCodes[code]
	return ok
}

func isAccessStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
