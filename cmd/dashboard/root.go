package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	seed       uint64
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Cybersecurity awareness dashboard: four views of tables and charts",
	// Ошибки печатает Execute, usage нужен только при неверных флагах
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml or ./configs/config.yaml)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed for synthetic data (0 = system entropy)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
