package logging

import (
	"errors"
	"fmt"
	"sync"
)

// LoggerManager хранит по одному файловому логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var components = &LoggerManager{loggers: make(map[string]*Logger)}

// GetLoggerManager возвращает общий реестр логгеров процесса
func GetLoggerManager() *LoggerManager {
	return components
}

// GetLogger возвращает логгер компонента, открывая его файл при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}
	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// CloseAll закрывает файлы всех логгеров и очищает реестр
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	clear(lm.loggers)
	return errors.Join(errs...)
}
