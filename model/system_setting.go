package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	SettingTypeGeneral  = "general"
	SettingTypeSecurity = "security"
)

type SystemSetting struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// SystemSettingGeneral holds instance-wide toggles.
type SystemSettingGeneral struct {
	SiteName      string `json:"site_name"`
	DisableSignup bool   `json:"disable_signup"`
}

// SystemSettingSecurity carries the JWT signing secret. The secret is
// generated on first boot and also salts client-IP hashing.
type SystemSettingSecurity struct {
	JWTSecret string `json:"jwt_secret"`
}

func (s *SystemSetting) GetGeneral() (*SystemSettingGeneral, error) {
	if s.Name != SettingTypeGeneral {
		return nil, errors.New("setting is not of general type")
	}
	general := &SystemSettingGeneral{}
	if err := json.Unmarshal([]byte(s.Value), general); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal general setting")
	}
	return general, nil
}

func (s *SystemSetting) GetSecurity() (*SystemSettingSecurity, error) {
	if s.Name != SettingTypeSecurity {
		return nil, errors.New("setting is not of security type")
	}
	security := &SystemSettingSecurity{}
	if err := json.Unmarshal([]byte(s.Value), security); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal security setting")
	}
	return security, nil
}

func (s *SystemSettingSecurity) ToJSON() string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (s *SystemSettingGeneral) ToJSON() string {
	b, _ := json.Marshal(s)
	return string(b)
}
