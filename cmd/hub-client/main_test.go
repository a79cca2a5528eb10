package main

import (
	"strings"
	"testing"
)

// TestArgumentValidation verifies the either-or contract between the fetch
// and upload modes.
func TestArgumentValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		expectedError string
		flags         appFlags
		wantErr       bool
	}{
		{
			name: "success with fetch flag",
			flags: appFlags{
				fetch:   "sets/corpus.json",
				upload:  "",
				out:     defaultOutputDir,
				key:     "",
				workers: 0,
				logDir:  "",
				verbose: false,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "success with upload flag",
			flags: appFlags{
				fetch:   "",
				upload:  "checkpoints/g_00500.pth",
				out:     defaultOutputDir,
				key:     "",
				workers: 0,
				logDir:  "",
				verbose: false,
			},
			wantErr:       false,
			expectedError: "",
		},
		{
			name: "error with both flags",
			flags: appFlags{
				fetch:   "sets/corpus.json",
				upload:  "checkpoints/g_00500.pth",
				out:     defaultOutputDir,
				key:     "",
				workers: 0,
				logDir:  "",
				verbose: false,
			},
			wantErr:       true,
			expectedError: errCannotFetchAndUpload,
		},
		{
			name: "error with no flags",
			flags: appFlags{
				fetch:   "",
				upload:  "",
				out:     defaultOutputDir,
				key:     "",
				workers: 0,
				logDir:  "",
				verbose: false,
			},
			wantErr:       true,
			expectedError: errEitherFetchOrUpload,
		},
		{
			name: "error with blank fetch key",
			flags: appFlags{
				fetch:   "   ",
				upload:  "",
				out:     defaultOutputDir,
				key:     "",
				workers: 0,
				logDir:  "",
				verbose: false,
			},
			wantErr:       true,
			expectedError: errEitherFetchOrUpload,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := validateArguments(testCase.flags)

			if testCase.wantErr {
				if err == nil {
					t.Errorf("Expected an error but got none")

					return
				}

				if !strings.Contains(err.Error(), testCase.expectedError) {
					t.Errorf(
						"Expected error to contain %q, but got %q",
						testCase.expectedError,
						err.Error(),
					)
				}

				return
			}

			if err != nil {
				t.Errorf("Did not expect an error, but got: %v", err)
			}
		})
	}
}
