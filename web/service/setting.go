package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"quill/database"
	"quill/database/model"
	"quill/util/common"
	"quill/util/random"
	"quill/util/reflect_util"
	"quill/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":        "",
	"webDomain":        "",
	"webPort":          "8080",
	"webCertFile":      "",
	"webKeyFile":       "",
	"webBasePath":      "/",
	"sessionMaxAge":    "60",
	"pageSize":         "10",
	"timeLocation":     "UTC",
	"secret":           random.Seq(32),
	"twoFactorEnable":  "false",
	"twoFactorToken":   "",
	"loginLimit":       "10",
	"smtpHost":         "",
	"smtpPort":         "587",
	"smtpUsername":     "",
	"smtpPassword":     "",
	"smtpFrom":         "",
	"contactRecipient": "",
	"smtpTimeout":      "10",
	"tgBotEnable":      "false",
	"tgBotToken":       "",
	"tgBotChatId":      "",
	"tgBotLoginNotify": "true",
	"redisAddr":        "",
	"redisPassword":    "",
	"redisDB":          "0",
}

// SettingService reads and writes the key/value settings table. Values not
// present in the table fall back to defaultValueMap.
type SettingService struct{}

// GetAllSetting maps the settings table onto the typed AllSetting entity,
// matching fields by their json tag.
func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	err := db.Model(model.Setting{}).Find(&settings).Error
	if err != nil {
		return nil, err
	}
	allSetting := &entity.AllSetting{}
	t := reflect.TypeOf(allSetting).Elem()
	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)

	setSetting := func(key, value string) (err error) {
		defer func() {
			panicErr := recover()
			if panicErr != nil {
				err = errors.New(fmt.Sprint(panicErr))
			}
		}()

		var found bool
		var field reflect.StructField
		for _, f := range fields {
			if f.Tag.Get("json") == key {
				field = f
				found = true
				break
			}
		}

		if !found {
			// Keys like "secret" are internal and never surface in the
			// settings entity.
			return nil
		}

		fieldV := v.FieldByName(field.Name)
		switch t := fieldV.Interface().(type) {
		case int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			fieldV.SetInt(n)
		case string:
			fieldV.SetString(value)
		case bool:
			fieldV.SetBool(value == "true")
		default:
			return common.NewErrorf("unknown field %v type %v", key, t)
		}
		return
	}

	keyMap := map[string]bool{}
	for _, setting := range settings {
		err := setSetting(setting.Key, setting.Value)
		if err != nil {
			return nil, err
		}
		keyMap[setting.Key] = true
	}

	for key, value := range defaultValueMap {
		if keyMap[key] {
			continue
		}
		err := setSetting(key, value)
		if err != nil {
			return nil, err
		}
	}

	return allSetting, nil
}

// UpdateAllSetting validates and persists every field of the entity.
func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	if err := allSetting.CheckValid(); err != nil {
		return err
	}

	v := reflect.ValueOf(allSetting).Elem()
	t := reflect.TypeOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)
	errs := make([]error, 0)
	for _, field := range fields {
		key := field.Tag.Get("json")
		fieldV := v.FieldByName(field.Name)
		value := fmt.Sprint(fieldV.Interface())
		err := s.saveSetting(key, value)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}

// ResetSettings drops every stored setting back to its default.
func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.getString(key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(key string, value bool) error {
	return s.setString(key, strconv.FormatBool(value))
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) GetWebDomain() (string, error) {
	return s.getString("webDomain")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setString("webPort", strconv.Itoa(port))
}

func (s *SettingService) GetCertFile() (string, error) {
	return s.getString("webCertFile")
}

func (s *SettingService) GetKeyFile() (string, error) {
	return s.getString("webKeyFile")
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if basePath == "" {
		basePath = "/"
	}
	return basePath, nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt("pageSize")
}

func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if err != nil {
		return nil, err
	}
	// Persist the generated default so cookies survive restarts.
	if _, err := s.getSetting("secret"); database.IsNotFound(err) {
		if err := s.saveSetting("secret", secret); err != nil {
			return nil, err
		}
	}
	return []byte(secret), nil
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		location, err = time.LoadLocation(defaultLocation)
	}
	return location, err
}

func (s *SettingService) GetTwoFactorEnable() (bool, error) {
	return s.getBool("twoFactorEnable")
}

func (s *SettingService) SetTwoFactorEnable(value bool) error {
	return s.setBool("twoFactorEnable", value)
}

func (s *SettingService) GetTwoFactorToken() (string, error) {
	return s.getString("twoFactorToken")
}

func (s *SettingService) SetTwoFactorToken(token string) error {
	return s.setString("twoFactorToken", token)
}

func (s *SettingService) GetLoginLimit() (int, error) {
	return s.getInt("loginLimit")
}

func (s *SettingService) GetSMTPHost() (string, error) {
	return s.getString("smtpHost")
}

func (s *SettingService) GetSMTPPort() (int, error) {
	return s.getInt("smtpPort")
}

func (s *SettingService) GetSMTPUsername() (string, error) {
	return s.getString("smtpUsername")
}

func (s *SettingService) GetSMTPPassword() (string, error) {
	return s.getString("smtpPassword")
}

func (s *SettingService) GetSMTPFrom() (string, error) {
	return s.getString("smtpFrom")
}

func (s *SettingService) GetContactRecipient() (string, error) {
	return s.getString("contactRecipient")
}

func (s *SettingService) GetSMTPTimeout() (time.Duration, error) {
	seconds, err := s.getInt("smtpTimeout")
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *SettingService) GetTgBotEnabled() (bool, error) {
	return s.getBool("tgBotEnable")
}

func (s *SettingService) SetTgBotEnabled(value bool) error {
	return s.setBool("tgBotEnable", value)
}

func (s *SettingService) GetTgBotToken() (string, error) {
	return s.getString("tgBotToken")
}

func (s *SettingService) SetTgBotToken(token string) error {
	return s.setString("tgBotToken", token)
}

func (s *SettingService) GetTgBotChatId() (string, error) {
	return s.getString("tgBotChatId")
}

func (s *SettingService) SetTgBotChatId(chatId string) error {
	return s.setString("tgBotChatId", chatId)
}

func (s *SettingService) GetTgBotLoginNotify() (bool, error) {
	return s.getBool("tgBotLoginNotify")
}

func (s *SettingService) GetRedisAddr() (string, error) {
	return s.getString("redisAddr")
}

func (s *SettingService) GetRedisPassword() (string, error) {
	return s.getString("redisPassword")
}

func (s *SettingService) GetRedisDB() (int, error) {
	return s.getInt("redisDB")
}
