package facefilter

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/facefilter/utils"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var (
	// validExtensions lists the supported source files.
	validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}
	// outputExtensions lists the supported destination files.
	outputExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
)

// Ops holds the source and destination of a batch operation.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int

	// imgFile holds the downloaded source image in case the source is an URL.
	imgFile *os.File
}

// result holds the relevant information about the processed image.
type result struct {
	path string
	err  error
}

// Execute applies the filter over the source image, which can be a local file,
// an URL, a pipe or a directory. The images of a directory are processed concurrently.
func (p *Processor) Execute(op *Ops) error {
	var (
		fs  os.FileInfo
		err error
	)

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(op.Src) {
		src, err := utils.DownloadImage(op.Src)
		if src != nil {
			defer os.Remove(src.Name())
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer src.Close()

		if fs, err = src.Stat(); err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		op.imgFile = src
	} else {
		// Check if the source is a pipe name or a regular file.
		if op.Src == op.PipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(op.Src)
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
		if err = p.executeDir(op); err != nil {
			return err
		}
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !utils.Contains(outputExtensions, ext) && op.Dst != op.PipeName {
			return fmt.Errorf("%v file type not supported", ext)
		}

		err = op.process(p, op.Src, op.Dst)
		op.printOpStatus(op.Dst, err)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported source: %s", op.Src)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
	)
	return nil
}

// executeDir processes recursively the image files from the source directory
// by distributing them between the workers.
func (p *Processor) executeDir(op *Ops) error {
	var (
		wg       sync.WaitGroup
		firstErr error
	)

	// Limit the concurrently running workers to maxWorkers.
	if op.Workers <= 0 || op.Workers > maxWorkers {
		op.Workers = runtime.NumCPU()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(utils.DecorateText("⚡ FACEFILTER", utils.StatusMessage)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowIts(),
	)

	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, validExtensions)

	wg.Add(op.Workers)
	for i := 0; i < op.Workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(p, op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	// Consume the channel values.
	for res := range ch {
		bar.Add(1)
		if res.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", res.path, res.err)
			}
			log.Println(utils.StatusLine(
				fmt.Sprintf("failed processing %s: %v", filepath.Base(res.path), res.err),
				utils.ErrorMessage,
			))
		}
	}
	bar.Finish()

	if err := <-errc; err != nil {
		return err
	}
	return firstErr
}

// consumer reads the path names from the paths channel and applies the filter over the source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		err := op.processFile(p, src, outputPath(dest, src))

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// outputPath returns the destination of a source image found in a directory.
// The formats without an encoder are saved as png.
func outputPath(dest, src string) string {
	name := filepath.Base(src)
	ext := filepath.Ext(name)
	if !utils.Contains(outputExtensions, strings.ToLower(ext)) {
		name = strings.TrimSuffix(name, ext) + ".png"
	}
	return filepath.Join(dest, name)
}

// process applies the filter over a single image while the progress indicator is running.
func (op *Ops) process(p *Processor, in, out string) error {
	if p.Spinner == nil {
		p.Spinner = utils.NewSpinner("⇢ applying the filter...", time.Millisecond*80, true)
	}
	p.Spinner.Start()

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(signalChan)
	}()
	go func() {
		if _, ok := <-signalChan; ok {
			p.Spinner.RestoreCursor()
			if out != op.PipeName {
				os.Remove(out)
			}
			os.Exit(1)
		}
	}()

	err := op.processFile(p, in, out)
	p.Spinner.Finish(err)

	return err
}

// processFile opens the source and the destination and calls the processor over them.
// The destination file is removed in case of an error.
func (op *Ops) processFile(p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if img, ok := src.(*os.File); ok && img != os.Stdin && img != op.imgFile {
			if err := img.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	err = p.Process(src, dst)

	if img, ok := dst.(*os.File); ok && img != os.Stdout {
		if cerr := img.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(img.Name())
		}
	}
	return err
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(in) && op.imgFile != nil {
		if _, err := op.imgFile.Seek(0, io.SeekStart); err != nil {
			return nil, nil, fmt.Errorf("unable to read the downloaded image: %w", err)
		}
		src = op.imgFile
	} else {
		// Check if the source is a pipe name or a regular file.
		if in == op.PipeName {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return nil, nil, errors.New("`-` should be used with a pipe for stdin")
			}
			src = os.Stdin
		} else {
			src, err = os.Open(in)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
			}
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin && f != op.imgFile {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin && f != op.imgFile {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the processed image.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		log.Println(
			utils.DecorateText("\nError applying the filter: ", utils.ErrorMessage) +
				utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}

			if utils.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}
