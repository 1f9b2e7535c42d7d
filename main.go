package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quill/config"
	"quill/database"
	"quill/logger"
	"quill/util/random"
	"quill/web"
	"quill/web/global"
	"quill/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	global.SetWebServer(server)
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			logger.CloseLogger()
			database.CloseDB()
			return
		}
	}
}

func resetSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	err = settingService.ResetSettings()
	if err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	allSetting, err := settingService.GetAllSetting()
	if err != nil {
		fmt.Println("get settings failed:", err)
		return
	}
	fmt.Printf("listen: %s\n", allSetting.WebListen)
	fmt.Printf("port: %d\n", allSetting.WebPort)
	fmt.Printf("base path: %s\n", allSetting.WebBasePath)
	fmt.Printf("session max age: %d minutes\n", allSetting.SessionMaxAge)
	fmt.Printf("login limit: %d per minute\n", allSetting.LoginLimit)
}

func updateSetting(port int, resetPassword string, adminEmail string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if port > 0 {
		if err := settingService.SetPort(port); err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}

	if resetPassword != "" {
		if adminEmail == "" {
			fmt.Println("use --email together with --password")
			return
		}
		userService := service.UserService{}
		user, err := userService.GetUserByEmail(adminEmail)
		if err != nil {
			fmt.Println("account not found:", err)
			return
		}
		if err := userService.UpdatePassword(user.Id, resetPassword); err != nil {
			fmt.Println("set password failed:", err)
		} else {
			fmt.Println("set password success")
		}
	}
}

func updateTgbotSetting(token, chatId string, enable bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if token != "" {
		if err := settingService.SetTgBotToken(token); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("set telegram bot token success")
	}

	if chatId != "" {
		if err := settingService.SetTgBotChatId(chatId); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("set telegram chat id success")
	}

	if err := settingService.SetTgBotEnabled(enable); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("telegram notifications enabled: %v\n", enable)
}

func updateTwoFactorSetting(enable bool) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if !enable {
		if err := settingService.SetTwoFactorEnable(false); err != nil {
			fmt.Println(err)
			return
		}
		if err := settingService.SetTwoFactorToken(""); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("two-factor authentication disabled")
		return
	}

	secret := random.Base32(32)
	if err := settingService.SetTwoFactorToken(secret); err != nil {
		fmt.Println(err)
		return
	}
	if err := settingService.SetTwoFactorEnable(true); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("two-factor authentication enabled")
	fmt.Printf("TOTP secret: %s\n", secret)
	fmt.Println("add the secret to an authenticator app; the next login requires a code")
}

func assignRole(email, role string) {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	if err := userService.SetRole(email, role); err != nil {
		fmt.Println("assign role failed:", err)
		return
	}
	fmt.Printf("%s is now %q\n", email, role)
}

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "quill",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			password, _ := cmd.Flags().GetString("password")
			email, _ := cmd.Flags().GetString("email")
			updateSetting(port, password, email)
		},
	}

	updateCmd.Flags().Int("port", 0, "set web port")
	updateCmd.Flags().String("email", "", "account email for password reset")
	updateCmd.Flags().String("password", "", "set a new password for the account")

	var tgbotCmd = &cobra.Command{
		Use:   "tgbot",
		Short: "Update telegram notifier settings",
		Run: func(cmd *cobra.Command, args []string) {
			token, _ := cmd.Flags().GetString("token")
			chatId, _ := cmd.Flags().GetString("chatid")
			enable, _ := cmd.Flags().GetBool("enable")
			updateTgbotSetting(token, chatId, enable)
		},
	}

	tgbotCmd.Flags().String("token", "", "set telegram bot token")
	tgbotCmd.Flags().String("chatid", "", "set telegram chat id")
	tgbotCmd.Flags().Bool("enable", false, "enable telegram notifications")

	var twoFactorCmd = &cobra.Command{
		Use:   "twofactor",
		Short: "Enable or disable the TOTP second factor for logins",
		Run: func(cmd *cobra.Command, args []string) {
			enable, _ := cmd.Flags().GetBool("enable")
			updateTwoFactorSetting(enable)
		},
	}

	twoFactorCmd.Flags().Bool("enable", false, "enable two-factor login and print a fresh TOTP secret")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd, tgbotCmd, twoFactorCmd)

	var roleCmd = &cobra.Command{
		Use:   "role",
		Short: "Assign a role to an account",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")
			if email == "" || role == "" {
				fmt.Println("both --email and --role are required")
				return
			}
			assignRole(email, role)
		},
	}

	roleCmd.Flags().String("email", "", "account email")
	roleCmd.Flags().String("role", "", "role name to assign")

	rootCmd.AddCommand(runCmd, settingCmd, roleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
