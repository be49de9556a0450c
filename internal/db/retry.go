package db

import (
	"time"
)

// Operation выполняет действие и возвращает ошибку при неудаче
type Operation func() error

// IsRetryable решает, стоит ли повторять операцию после ошибки
type IsRetryable func(err error) bool

const DefaultMaxRetries = 5

// WithRetries выполняет операцию, повторяя её до maxRetries раз, пока ошибка признаётся повторяемой.
// Между попытками делается короткая нарастающая пауза.
func WithRetries(op Operation, maxRetries int, retryable IsRetryable) error {
	var err error
	// Первая попытка (attempt = 0) плюс maxRetries повторов
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		if attempt == maxRetries || !retryable(err) {
			break
		}

		time.Sleep(time.Duration(attempt+1) * time.Millisecond)
	}
	return err
}
