// Package month содержит календарную арифметику по месяцам.
package month

import (
	"time"
)

// AddMonths прибавляет к t n календарных месяцев.
//
// В отличие от time.AddDate день не переносится в следующий месяц:
// если в целевом месяце нет такого числа, берётся его последний день.
// Например, 31 января + 1 месяц = 28 (29) февраля, а не 3 марта.
func AddMonths(t time.Time, n int) time.Time {
	year, mon, day := t.Date()
	hour, minute, sec := t.Clock()

	// Первое число целевого месяца, нормализация года делается самим time.Date
	first := time.Date(year, mon+time.Month(n), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
