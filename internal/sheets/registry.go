package sheets

import (
	"context"
	"fmt"

	"github.com/habicapital/docs-service/internal/drive"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Registry lee el registro de clientes de crédito desde la hoja de Google
// Sheets. La hoja tiene las columnas A..F donde B es la fecha, C el nombre,
// D la cédula y F la URL de la carpeta del cliente.
type Registry struct {
	service       *gsheets.Service
	spreadsheetID string
	sheetName     string
	logger        *logrus.Logger
}

// NewRegistry crea el lector del registro con credenciales de cuenta de servicio
func NewRegistry(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *logrus.Logger) (*Registry, error) {
	service, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating Sheets service: %w", err)
	}

	return &Registry{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

// Clients retorna las filas con datos completos (fecha, nombre y cédula).
// Las filas incompletas se omiten, igual que en el script original.
func (r *Registry) Clients(ctx context.Context) ([]drive.RegistryEntry, error) {
	readRange := fmt.Sprintf("%s!A2:F", r.sheetName)
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error reading registry sheet: %w", err)
	}

	entries := make([]drive.RegistryEntry, 0, len(resp.Values))
	for i, row := range resp.Values {
		fecha := cellString(row, 1)
		nombre := cellString(row, 2)
		cedula := cellString(row, 3)
		if fecha == "" || nombre == "" || cedula == "" {
			continue
		}

		entries = append(entries, drive.RegistryEntry{
			Row:       i + 2, // los datos empiezan en la fila 2
			Fecha:     fecha,
			Nombre:    nombre,
			Cedula:    cedula,
			FolderURL: cellString(row, 5),
		})
	}

	r.logger.WithField("clients", len(entries)).Debug("Client registry read")
	return entries, nil
}

// SetFolderURL escribe la URL de carpeta en la columna F de la fila dada.
func (r *Registry) SetFolderURL(ctx context.Context, row int, url string) error {
	writeRange := fmt.Sprintf("%s!F%d", r.sheetName, row)
	_, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, writeRange, &gsheets.ValueRange{
		Values: [][]interface{}{{url}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing folder URL to registry: %w", err)
	}
	return nil
}

// cellString lee una celda como string tolerando filas cortas.
func cellString(row []interface{}, index int) string {
	if index >= len(row) {
		return ""
	}
	if s, ok := row[index].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[index])
}
