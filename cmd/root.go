////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/caffeinepub/vibechat/event"
	"github.com/caffeinepub/vibechat/messenger"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/share"
	pprofile "github.com/pkg/profile"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/ekv"
)

// Directory names under the session directory.
const (
	settingsDir = "settings"
	socialDir   = "social"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// profiler is the running CPU profile, if any.
var profiler interface{ Stop() }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vibechat",
	Short: "Runs a client for the Vibechat messaging service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLog(viper.GetUint(logLevelFlag), viper.GetString(logFlag))
		if dir := viper.GetString(profileCpuFlag); dir != "" {
			profiler = pprofile.Start(pprofile.CPUProfile,
				pprofile.ProfilePath(dir), pprofile.Quiet)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// offlineBackend serves every command run without --backend. With --session
// it is stored in the session between runs.
var (
	offlineBackend *remote.Memory
	offline        *offlineStore
)

// initMessenger builds the messenger from the flags and marks it ready. The
// caller must close it.
func initMessenger() *messenger.Messenger {
	caller := remote.Identity("")
	if text := viper.GetString(identityFlag); text != "" {
		var err error
		caller, err = remote.ParseIdentity(text)
		if err != nil {
			jww.FATAL.Panicf("Invalid identity %q: %+v", text, err)
		}
	}

	params, err := messenger.GetParameters(viper.GetString(paramsFlag))
	if err != nil {
		jww.FATAL.Panicf("Failed to parse params: %+v", err)
	}

	cfg := messenger.Config{
		Caller: caller,
		Opener: share.BrowserOpener{},
		Params: params,
	}

	var fs ekv.KeyValue
	if storeDir := viper.GetString(sessionFlag); storeDir != "" {
		fs, err = ekv.NewFilestore(filepath.Join(storeDir, settingsDir),
			viper.GetString(passwordFlag))
		if err != nil {
			jww.FATAL.Panicf("Failed to open settings store: %+v", err)
		}
		cfg.Storage = fs
		cfg.SocialDir = filepath.Join(storeDir, socialDir)
	}

	if baseURL := viper.GetString(backendFlag); baseURL != "" {
		httpParams := remote.DefaultHTTPParams(baseURL)
		httpParams.Token = viper.GetString(tokenFlag)
		client, err := remote.NewHTTPClient(httpParams)
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		cfg.API = client
	} else {
		if fs != nil {
			offline = newOfflineStore(fs)
			offlineBackend, err = offline.load()
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
		} else {
			jww.WARN.Printf("No backend or session set, using an in-memory " +
				"backend that is lost on exit")
			offlineBackend = remote.NewMemory()
		}
		cfg.API = offlineBackend.As(caller)
	}

	m, err := messenger.New(cfg)
	if err != nil {
		jww.FATAL.Panicf("%+v", err)
	}

	err = m.Events().RegisterCallback("cli", func(e event.Event) {
		jww.INFO.Printf("[EVENT] %s", e)
	})
	if err != nil {
		jww.FATAL.Panicf("%+v", err)
	}

	m.SetReady()
	return m
}

// closeMessenger closes the messenger and stores the offline backend, if any.
func closeMessenger(m *messenger.Messenger) {
	if err := m.Close(); err != nil {
		jww.ERROR.Printf("Failed to close: %+v", err)
	}
	if offline != nil {
		if err := offline.save(offlineBackend); err != nil {
			jww.ERROR.Printf("%+v", err)
		}
	}
}

// exitOnErr prints the user-facing error, closes the messenger and exits.
func exitOnErr(m *messenger.Messenger, err error) {
	if err == nil {
		return
	}
	fmt.Println(err)
	closeMessenger(m)
	os.Exit(1)
}

func initLog(threshold uint, logPath string) {
	if logPath != "-" && logPath != "" {
		// Disable stdout output
		jww.SetStdoutOutput(ioutil.Discard)
		// Use log file
		logOutput, err := os.OpenFile(logPath,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err.Error())
		}
		jww.SetLogOutput(logOutput)
	}

	if threshold > 1 {
		jww.INFO.Printf("log level set to: TRACE")
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetLogThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else if threshold == 1 {
		jww.INFO.Printf("log level set to: DEBUG")
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetLogThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		jww.INFO.Printf("log level set to: WARN")
		jww.SetStdoutThreshold(jww.LevelWarn)
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

// initConfig reads the config file, if any, and the VIBECHAT_ environment
// variables.
func initConfig() {
	if cfgFile := viper.GetString(configFlag); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read config %s: %v\n", cfgFile,
				err)
			os.Exit(1)
		}
	}

	viper.SetEnvPrefix("VIBECHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// init is the initialization function for Cobra which defines commands
// and flags.
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().UintP(logLevelFlag, "v", 0,
		"Verbose mode for debugging")
	viper.BindPFlag(logLevelFlag, rootCmd.PersistentFlags().Lookup(logLevelFlag))

	rootCmd.PersistentFlags().StringP(logFlag, "l", "-",
		"Path to the log output path (- is stdout)")
	viper.BindPFlag(logFlag, rootCmd.PersistentFlags().Lookup(logFlag))

	rootCmd.PersistentFlags().StringP(sessionFlag, "s", "",
		"Storage directory for device settings, the social store and the "+
			"offline backend. Nothing is stored when empty")
	viper.BindPFlag(sessionFlag, rootCmd.PersistentFlags().Lookup(sessionFlag))

	rootCmd.PersistentFlags().StringP(passwordFlag, "p", "",
		"Password to the settings store")
	viper.BindPFlag(passwordFlag, rootCmd.PersistentFlags().Lookup(passwordFlag))

	rootCmd.PersistentFlags().StringP(identityFlag, "i", "",
		"Principal text of the caller. Empty is the anonymous identity")
	viper.BindPFlag(identityFlag, rootCmd.PersistentFlags().Lookup(identityFlag))

	rootCmd.PersistentFlags().StringP(backendFlag, "b", "",
		"Base URL of the backend. Without it an in-memory backend is used")
	viper.BindPFlag(backendFlag, rootCmd.PersistentFlags().Lookup(backendFlag))

	rootCmd.PersistentFlags().String(tokenFlag, "",
		"Bearer token sent to the backend")
	viper.BindPFlag(tokenFlag, rootCmd.PersistentFlags().Lookup(tokenFlag))

	rootCmd.PersistentFlags().String(paramsFlag, "",
		"JSON overrides of the client parameters, e.g. "+
			`'{"pollIntervalMs": 1000}'`)
	viper.BindPFlag(paramsFlag, rootCmd.PersistentFlags().Lookup(paramsFlag))

	rootCmd.PersistentFlags().String(configFlag, "",
		"Path to a config file holding any of the flags")
	viper.BindPFlag(configFlag, rootCmd.PersistentFlags().Lookup(configFlag))

	rootCmd.PersistentFlags().String(profileCpuFlag, "",
		"Enables CPU profiling and writes the profile to this directory")
	viper.BindPFlag(profileCpuFlag,
		rootCmd.PersistentFlags().Lookup(profileCpuFlag))
}
