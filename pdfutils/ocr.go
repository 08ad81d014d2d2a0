package pdfutils

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

func CheckForTesseract(path string) bool {
	if path == "tesseract" {
		if _, err := exec.LookPath("tesseract"); err != nil {
			return false
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}

	return true
}

// tesseractArgs builds the arguments for one stdin/stdout OCR pass. The DPI
// hint matches the scale annotation subimages are rendered at.
func tesseractArgs(lang, dataDir string) []string {
	args := []string{
		"stdin", "stdout",
		"--dpi", strconv.Itoa(int(72 * ScaleUpFactor)),
		"-l", lang,
	}

	if dataDir != "" {
		args = append(args, "--tessdata-dir", dataDir)
	}

	return args
}

// OCRImage runs tesseract over an extracted annotation subimage, piping it
// in as PNG, and condenses the recognized text to a single line.
func OCRImage(img image.Image, tessPath, lang, dataDir string) (string, error) {
	cmd := exec.Command(tessPath, tesseractArgs(lang, dataDir)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", err
	}

	go func() {
		defer stdin.Close()
		png.Encode(stdin, img)
	}()

	var out bytes.Buffer
	cmd.Stdout = &out

	err = cmd.Run()
	if err != nil {
		return "", err
	}

	return CondenseSpaces(out.String()), nil
}

func ValidateLang(tessPath, code string) bool {
	split := strings.Split(code, "+")

	cmd := exec.Command(tessPath, "--list-langs")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return false
	}

	outLines := strings.Split(string(out), "\n")

	for _, lang := range split {
		found := false
		for _, line := range outLines {
			if strings.Trim(line, "\n ") == lang {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
