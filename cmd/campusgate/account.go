package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/campusgate/internal/badge"
	"github.com/BrandonDHaskell/campusgate/internal/campus/types"
	"github.com/BrandonDHaskell/campusgate/internal/session"
)

var registerReq types.RegisterRequest

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(registerReq.Password, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		req := registerReq
		req.Password = pw

		if err := newGateway(nil).Register(cmd.Context(), req); err != nil {
			return errors.New(describe(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). Sign in with: campusgate login --correo %s\n", req.Name, req.Code, req.Email)
		return nil
	},
}

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		pw, err := readPassword(loginPassword, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		resp, err := newGateway(nil).Login(cmd.Context(), loginEmail, pw)
		if err != nil {
			return errors.New(describe(err))
		}
		if err := store.Save(session.Session{User: resp.User, Token: resp.Token}); err != nil {
			return err
		}

		log.Debug().Str("path", store.Path()).Msg("session saved")
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var profileBarcode string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user and optionally write their badge barcode",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess, err := loadSession()
		if err != nil {
			return err
		}
		if sess == nil {
			return errors.New("not signed in; run campusgate login first")
		}

		u := sess.User
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Nombre:  %s\n", u.Name)
		fmt.Fprintf(out, "Correo:  %s\n", u.Email)
		fmt.Fprintf(out, "Carrera: %s\n", u.Program)
		fmt.Fprintf(out, "Rol:     %s\n", u.Role)
		fmt.Fprintf(out, "Código:  %s\n", u.Code)

		if profileBarcode == "" {
			return nil
		}
		f, err := os.Create(profileBarcode)
		if err != nil {
			return err
		}
		if err := badge.WritePNG(f, u.Code); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Barcode written to %s\n", profileBarcode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, profileCmd)

	f := registerCmd.Flags()
	f.StringVar(&registerReq.Name, "nombre", "", "full name")
	f.StringVar(&registerReq.Email, "correo", "", "email address")
	f.StringVar(&registerReq.Code, "codigo", "", "badge barcode")
	f.StringVar(&registerReq.Program, "carrera", "", "program of study")
	f.StringVar((*string)(&registerReq.Role), "rol", string(types.RoleMember), "member, staff or admin")
	f.StringVar(&registerReq.Password, "password", "", "password (read from stdin when empty)")
	for _, name := range []string{"nombre", "correo", "codigo", "carrera"} {
		_ = registerCmd.MarkFlagRequired(name)
	}

	loginCmd.Flags().StringVar(&loginEmail, "correo", "", "email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("correo")

	profileCmd.Flags().StringVar(&profileBarcode, "barcode", "", "write the badge as a PNG to this path")
}
