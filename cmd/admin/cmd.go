package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/model"
	"github.com/Skyler-Tan/G17--Mini-IT-project/internal/repository"
)

const minPasswordLen = 8

var (
	readPasswordFunc = term.ReadPassword // 测试中替换

	errHelp = errors.New("help provided")
)

type commandLine struct {
	users repository.UserRepository
	out   io.Writer
}

func (cli *commandLine) writer() io.Writer {
	if cli.out == nil {
		return os.Stdout
	}
	return cli.out
}

func (cli *commandLine) printUsage() {
	w := cli.writer()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  adduser -email EMAIL -name NAME [-role lecturer|admin] - 创建或更新教师/管理员账号，随后提示输入密码")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.writer())
	email := addUserCmd.String("email", "", "登录邮箱")
	name := addUserCmd.String("name", "", "显示名称")
	role := addUserCmd.String("role", model.RoleLecturer, "lecturer 或 admin")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" || *name == "" {
			addUserCmd.Usage()
			return errHelp
		}
		if *role != model.RoleLecturer && *role != model.RoleAdmin {
			return fmt.Errorf("不支持的角色 %q", *role)
		}

		fmt.Fprint(cli.writer(), "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.writer())
		if err != nil {
			return err
		}
		if len(pwd) < minPasswordLen {
			return fmt.Errorf("密码长度不能少于 %d 位", minPasswordLen)
		}
		return cli.addUser(context.Background(), *email, *name, *role, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
