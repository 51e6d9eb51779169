package store

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/util"
)

func (s *Store) GetSystemSetting(name string) (*model.SystemSetting, error) {
	if cache, ok := s.SystemSettingCache.Load(name); ok {
		return cache.(*model.SystemSetting), nil
	}

	setting := &model.SystemSetting{}
	stmt := "SELECT name, value, description FROM system_setting WHERE name = ?"
	if err := s.db.QueryRow(stmt, name).Scan(&setting.Name, &setting.Value, &setting.Description); err != nil {
		return nil, errors.Wrap(err, "failed to get system setting")
	}

	s.SystemSettingCache.Store(setting.Name, setting)
	return setting, nil
}

func (s *Store) GetSystemGeneralSetting() (*model.SystemSettingGeneral, error) {
	systemSetting, err := s.GetSystemSetting(model.SettingTypeGeneral)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get system general setting")
	}
	return systemSetting.GetGeneral()
}

func (s *Store) UpsetSystemSetting(setting *model.SystemSetting) (*model.SystemSetting, error) {
	newSetting := &model.SystemSetting{
		Name:        setting.Name,
		Description: setting.Description,
	}

	var value []byte
	var err error
	switch setting.Name {
	case model.SettingTypeSecurity:
		security, err := setting.GetSecurity()
		if err != nil {
			return nil, err
		}
		value, err = json.Marshal(security)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal security setting")
		}
	case model.SettingTypeGeneral:
		general, err := setting.GetGeneral()
		if err != nil {
			return nil, err
		}
		value, err = json.Marshal(general)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal general setting")
		}
	default:
		log.Debug("Unsupported system setting key", zap.String("setting", setting.Name))
		return nil, errors.Errorf("unsupported system setting key: %v", setting.Name)
	}
	if err != nil {
		return nil, err
	}

	newSetting.Value = string(value)
	stmt := `
	INSERT INTO system_setting (
		name, value, description
	)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE
	SET
		value = EXCLUDED.value,
		description = EXCLUDED.description
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()
	if _, err := s.db.Exec(stmt, newSetting.Name, newSetting.Value, newSetting.Description); err != nil {
		return nil, errors.Wrap(err, "failed to insert/update system setting")
	}
	s.SystemSettingCache.Store(newSetting.Name, newSetting)
	return newSetting, nil
}

// GetOrUpsetSystemSecuritySetting returns the security setting,
// generating a JWT secret on first boot.
func (s *Store) GetOrUpsetSystemSecuritySetting() (*model.SystemSettingSecurity, error) {
	systemSetting, err := s.GetSystemSetting(model.SettingTypeSecurity)
	modified := false
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("SQL no rows, create security setting")
			modified = true
		} else {
			return nil, errors.Wrap(err, "failed to get security settings")
		}
	}

	securitySetting := &model.SystemSettingSecurity{}
	if systemSetting != nil {
		if err := json.Unmarshal([]byte(systemSetting.Value), securitySetting); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal security settings")
		}
	}

	if securitySetting.JWTSecret == "" {
		log.Debug("No JWT secret found, create it")
		modified = true
	}

	if modified {
		securitySetting.JWTSecret = util.GenUUID()
		if _, err := s.UpsetSystemSetting(&model.SystemSetting{
			Name:  model.SettingTypeSecurity,
			Value: securitySetting.ToJSON(),
		}); err != nil {
			return nil, errors.Wrap(err, "failed to upset security settings")
		}
		log.Debug("Security setting created", zap.String("type", model.SettingTypeSecurity))
	}
	return securitySetting, nil
}

func (s *Store) UpsetGeneralSettings(settings *model.SystemSettingGeneral) (*model.SystemSettingGeneral, error) {
	_, err := s.UpsetSystemSetting(&model.SystemSetting{
		Name:  model.SettingTypeGeneral,
		Value: settings.ToJSON(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upset general settings")
	}

	return settings, nil
}
