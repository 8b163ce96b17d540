package residentid

import (
	"fmt"
	"time"
)

// BirthDate is the calendar date embedded in a number.
type BirthDate struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYY-MM-DD.
func (d BirthDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Display formats the date for people, without leading zeros on month and day.
func (d BirthDate) Display() string {
	return fmt.Sprintf("%d年%d月%d日", d.Year, d.Month, d.Day)
}

// Time returns midnight of the date in loc.
func (d BirthDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// AgeAt returns the age in completed years on the calendar date of now.
// A date before the birth date yields 0.
func (d BirthDate) AgeAt(now time.Time) int {
	y, m, day := now.Date()
	age := y - d.Year
	if int(m) < d.Month || (int(m) == d.Month && day < d.Day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// After reports whether d falls on a later calendar date than now.
func (d BirthDate) After(now time.Time) bool {
	y, m, day := now.Date()
	if d.Year != y {
		return d.Year > y
	}
	if d.Month != int(m) {
		return d.Month > int(m)
	}
	return d.Day > day
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysIn returns the number of days of month in year, or 0 for an invalid month.
func DaysIn(month, year int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// checkDate enforces the calendar and policy bounds on d.
func checkDate(d BirthDate, policy Policy, now time.Time) error {
	if d.Year < policy.MinBirthYear {
		return reject(BadDate, "year %d is before %d", d.Year, policy.MinBirthYear)
	}
	if d.Month < 1 || d.Month > 12 {
		return reject(BadDate, "month %d is out of range", d.Month)
	}
	if days := DaysIn(d.Month, d.Year); d.Day < 1 || d.Day > days {
		return reject(BadDate, "day %d is out of range for %04d-%02d", d.Day, d.Year, d.Month)
	}
	if policy.RejectFutureDates && d.After(now) {
		return reject(BadDate, "birth date %s is in the future", d)
	}
	return nil
}
