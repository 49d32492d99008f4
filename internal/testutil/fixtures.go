// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PetstoreYAML is an OAS 3.0 contract exercising every parameter location,
// the common styles, and JSON, multipart, and binary bodies.
const PetstoreYAML = `openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
security:
  - apiKey: []
paths:
  /pets:
    get:
      operationId: listPets
      summary: List all pets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 100
        - name: tags
          in: query
          schema:
            type: array
            items:
              type: string
        - name: X-Request-ID
          in: header
          schema:
            type: string
        - name: Accept
          in: header
          schema:
            type: string
      responses:
        '200':
          description: A list of pets
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
        default:
          $ref: '#/components/responses/Error'
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/NewPet'
          multipart/form-data:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                age:
                  type: integer
                photo:
                  type: string
      responses:
        '201':
          description: Created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
        4XX:
          $ref: '#/components/responses/Error'
  /pets/mine:
    get:
      operationId: listMyPets
      responses:
        '200':
          description: Pets owned by the caller
  /pets/{petId}:
    parameters:
      - $ref: '#/components/parameters/PetId'
    get:
      operationId: showPetById
      tags: [pets]
      responses:
        '200':
          description: The pet
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
        '404':
          $ref: '#/components/responses/Error'
    delete:
      operationId: deletePet
      security: []
      responses:
        '204':
          description: Deleted
  /pets/{petId}/photo:
    parameters:
      - $ref: '#/components/parameters/PetId'
    put:
      operationId: uploadPhoto
      requestBody:
        content:
          application/octet-stream:
            schema:
              type: string
          image/*: {}
      responses:
        '204':
          description: Uploaded
  /colors/{color}:
    get:
      operationId: findByColor
      parameters:
        - name: color
          in: path
          required: true
          style: label
          schema:
            type: array
            items:
              type: string
      responses:
        '200':
          description: ok
  /search/{coords}:
    get:
      operationId: searchByCoords
      parameters:
        - name: coords
          in: path
          required: true
          style: matrix
          explode: true
          schema:
            type: object
            properties:
              x:
                type: integer
              y:
                type: integer
        - name: filter
          in: query
          style: deepObject
          schema:
            type: object
            properties:
              color:
                type: string
              size:
                type: integer
        - name: session
          in: cookie
          required: true
          schema:
            type: string
      responses:
        '200':
          description: ok
components:
  parameters:
    PetId:
      name: petId
      in: path
      required: true
      schema:
        type: integer
        format: int64
  responses:
    Error:
      description: Error
      content:
        application/json:
          schema:
            $ref: '#/components/schemas/Error'
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          format: int64
        name:
          type: string
        tag:
          type: string
          nullable: true
    NewPet:
      type: object
      required: [name]
      properties:
        name:
          type: string
          minLength: 1
        tag:
          type: string
          nullable: true
    Error:
      type: object
      required: [code, message]
      properties:
        code:
          type: integer
        message:
          type: string
  securitySchemes:
    apiKey:
      type: apiKey
      in: header
      name: X-API-Key
    bearer:
      type: http
      scheme: bearer
      bearerFormat: JWT
`

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// WriteTempFile writes data to name inside a per-test temporary directory.
// Returns the path to the file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}

	return tmpFile
}

// WritePetstore writes PetstoreYAML to a temporary file and returns its path.
func WritePetstore(t *testing.T) string {
	t.Helper()
	return WriteTempFile(t, "petstore.yaml", []byte(PetstoreYAML))
}
