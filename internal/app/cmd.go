package app

import (
	"fmt"
	"strconv"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandLoadIngredients は食材ファイルを一括登録することを示す。
	CommandLoadIngredients Command = "load-ingredients"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "worker":
		return CommandWorker
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "load-ingredients":
		return CommandLoadIngredients
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// MigrateDirection はマイグレーションの方向を表す。
type MigrateDirection string

const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// MigrateArgs は migrate サブコマンドの引数。
type MigrateArgs struct {
	Direction MigrateDirection
	Steps     int
}

// ParseMigrateArgs は「migrate [up|down [steps]]」の引数を解析する。
// 方向を省略した場合は up、down で steps を省略した場合は1ステップ戻す。
func ParseMigrateArgs(args []string) (MigrateArgs, error) {
	if len(args) == 0 || args[0] == string(MigrateUp) {
		if len(args) > 1 {
			return MigrateArgs{}, fmt.Errorf("migrate up takes no arguments")
		}
		return MigrateArgs{Direction: MigrateUp}, nil
	}
	if args[0] != string(MigrateDown) {
		return MigrateArgs{}, fmt.Errorf("unknown migrate direction: %q", args[0])
	}

	steps := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return MigrateArgs{}, fmt.Errorf("invalid migrate steps: %q", args[1])
		}
		steps = n
	}
	return MigrateArgs{Direction: MigrateDown, Steps: steps}, nil
}

// ParseLoadIngredientsArgs は load-ingredients の読み込み対象ファイルを返す。
func ParseLoadIngredientsArgs(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: load-ingredients <file.csv|file.json>")
	}
	return args[0], nil
}
