package service

import (
	"testing"

	"quill/util/random"

	"github.com/stretchr/testify/assert"
)

func TestSettingDefaultsAndUpdate(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	port, err := settingService.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 8080, port)

	basePath, err := settingService.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/", basePath)

	assert.NoError(t, settingService.SetPort(9090))
	port, err = settingService.GetPort()
	assert.NoError(t, err)
	assert.Equal(t, 9090, port)
}

func TestSecretIsGeneratedOnceAndPersisted(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	first, err := settingService.GetSecret()
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := settingService.GetSecret()
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTwoFactorSettingsRoundTrip(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	enabled, err := settingService.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.False(t, enabled)

	secret := random.Base32(32)
	assert.NoError(t, settingService.SetTwoFactorToken(secret))
	assert.NoError(t, settingService.SetTwoFactorEnable(true))

	enabled, err = settingService.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.True(t, enabled)

	token, err := settingService.GetTwoFactorToken()
	assert.NoError(t, err)
	assert.Equal(t, secret, token)

	// Disabling clears the requirement without losing other settings
	assert.NoError(t, settingService.SetTwoFactorEnable(false))
	assert.NoError(t, settingService.SetTwoFactorToken(""))
	enabled, err = settingService.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.False(t, enabled)
}

func TestUpdateAllSettingValidates(t *testing.T) {
	setup()
	defer teardown()

	settingService := SettingService{}

	allSetting, err := settingService.GetAllSetting()
	assert.NoError(t, err)

	allSetting.WebPort = -1
	assert.Error(t, settingService.UpdateAllSetting(allSetting))

	allSetting.WebPort = 8081
	allSetting.WebBasePath = "blog"
	assert.NoError(t, settingService.UpdateAllSetting(allSetting))

	// Base path was normalized on save
	basePath, err := settingService.GetBasePath()
	assert.NoError(t, err)
	assert.Equal(t, "/blog/", basePath)
}
