package service

import "time"

// Clock абстрагирует источник текущего времени.
// Вся арифметика окон и дедлайнов считается от Clock.Now(),
// тесты подставляют фиксированное время.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewRealClock возвращает Clock на основе системных часов
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}
