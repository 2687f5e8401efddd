// Package paxml writes PAXML 2.0 time transaction documents for payroll import.
package paxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Format         = "LÖNIN"
	Version        = "2.0"
	SchemaLocation = "http://www.paxml.se/2.0/paxml.xsd"
	dateLayout     = "2006-01-02"
)

var ErrInvalidTimeRange = errors.New("end time must be after start time")

type Header struct {
	OrgNumber   string
	CompanyName string
	Program     string
	Created     time.Time
}

// Transaction is one row in <tidtransaktioner>.
type Transaction struct {
	PostID     int64
	EmployeeID string
	TimeCode   string
	Date       time.Time
	Hours      decimal.Decimal
	Info       string
}

type document struct {
	XMLName        xml.Name     `xml:"paxml"`
	XSI            string       `xml:"xmlns:xsi,attr"`
	SchemaLocation string       `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Header         header       `xml:"header"`
	Transactions   transactions `xml:"tidtransaktioner"`
}

type transactions struct {
	Rows []transaction `xml:"tidtrans"`
}

type header struct {
	Format      string `xml:"format"`
	Version     string `xml:"version"`
	Created     string `xml:"datum"`
	OrgNumber   string `xml:"foretagorgnr,omitempty"`
	CompanyName string `xml:"foretagnamn,omitempty"`
	Program     string `xml:"programnamn,omitempty"`
}

type transaction struct {
	EmployeeID string `xml:"anstid,attr"`
	PostID     int64  `xml:"postid,attr,omitempty"`
	TimeCode   string `xml:"tidkod"`
	Date       string `xml:"datum"`
	Hours      string `xml:"timmar"`
	Info       string `xml:"info,omitempty"`
}

// Write encodes the document. Transactions are ordered by employee, date and post id.
func Write(w io.Writer, h Header, txs []Transaction) error {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.PostID < b.PostID
	})

	doc := document{
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: SchemaLocation,
		Header: header{
			Format:      Format,
			Version:     Version,
			Created:     h.Created.Format("2006-01-02T15:04:05"),
			OrgNumber:   h.OrgNumber,
			CompanyName: h.CompanyName,
			Program:     h.Program,
		},
		Transactions: transactions{Rows: make([]transaction, 0, len(sorted))},
	}
	for _, tx := range sorted {
		doc.Transactions.Rows = append(doc.Transactions.Rows, transaction{
			EmployeeID: tx.EmployeeID,
			PostID:     tx.PostID,
			TimeCode:   tx.TimeCode,
			Date:       tx.Date.Format(dateLayout),
			Hours:      tx.Hours.StringFixed(2),
			Info:       tx.Info,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode paxml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Hours returns end-start in hours, rounded to two decimals. Both clocks are
// "HH:MM" or "HH:MM:SS" on the same day.
func Hours(start, end string) (decimal.Decimal, error) {
	s, err := parseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	e, err := parseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	if !e.After(s) {
		return decimal.Zero, ErrInvalidTimeRange
	}
	minutes := decimal.NewFromFloat(e.Sub(s).Minutes())
	return minutes.Div(decimal.NewFromInt(60)).Round(2), nil
}

func parseClock(v string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid clock value %q", v)
}
