// Package crm Salesforce 联系人同步
package crm

import (
	"context"
	"errors"
	"strings"

	"github.com/simpleforce/simpleforce"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/config"
)

type Contact struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	JobTitle string `json:"jobTitle"`
}

type Result struct {
	ContactID string `json:"contactId"`
	AccountID string `json:"accountId,omitempty"`
}

// Pusher 屏蔽具体 CRM 供应商
type Pusher interface {
	CreateContact(ctx context.Context, c Contact) (*Result, error)
}

type Salesforce struct {
	cfg config.Salesforce
}

func NewSalesforce(cfg config.Salesforce) *Salesforce {
	return &Salesforce{cfg: cfg}
}

func (s *Salesforce) login() (*simpleforce.Client, error) {
	client := simpleforce.NewClient(s.cfg.LoginURL, simpleforce.DefaultClientID, simpleforce.DefaultAPIVersion)
	if client == nil {
		return nil, errors.New("salesforce: client init failed")
	}
	if err := client.LoginPassword(s.cfg.Username, s.cfg.Password, s.cfg.SecurityToken); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Salesforce) CreateContact(_ context.Context, c Contact) (*Result, error) {
	client, err := s.login()
	if err != nil {
		return nil, apperr.Internal("Failed to create contact in Salesforce", err)
	}

	var accountID string
	if c.Company != "" {
		acc := client.SObject("Account").Set("Name", c.Company).Create()
		if acc == nil {
			return nil, apperr.Internal("Failed to create contact in Salesforce", nil)
		}
		accountID = acc.ID()
	}

	first, last := splitName(c.Name)
	obj := client.SObject("Contact").
		Set("FirstName", first).
		Set("LastName", last).
		Set("Email", c.Email)
	if c.Phone != "" {
		obj.Set("Phone", c.Phone)
	}
	if c.JobTitle != "" {
		obj.Set("Title", c.JobTitle)
	}
	if accountID != "" {
		obj.Set("AccountId", accountID)
	}

	res := obj.Create()
	if res == nil {
		return nil, apperr.Internal("Failed to create contact in Salesforce", nil)
	}
	return &Result{ContactID: res.ID(), AccountID: accountID}, nil
}

// splitName Salesforce 的 Contact 要求 LastName 非空
func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", "User"
	case 1:
		return "", fields[0]
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
