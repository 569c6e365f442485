package main

// gentoken issues a development JWT for local testing. Production tokens come
// from the identity service; this binary only mirrors its claim layout.

import (
	"flag"
	"fmt"
	"os"
	"time"

	"almapos/internal/config"
	"almapos/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	comercio := flag.String("comercio", "", "comercio UUID (random if empty)")
	rol := flag.String("rol", "administrador", "rol claim: cajero | supervisor | administrador")
	pv := flag.Int("pv", 1, "punto de venta")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	comercioID := *comercio
	if comercioID == "" {
		comercioID = uuid.NewString()
	}

	claims := middleware.JWTClaims{
		ComercioID:   comercioID,
		UserID:       uuid.NewString(),
		Rol:          *rol,
		PuntoDeVenta: pv,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(*ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}

	fmt.Println("comercio_id:", comercioID)
	fmt.Println(token)
}
